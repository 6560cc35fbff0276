package listing

import (
	"log"
	"net/http"
	"time"

	"github.com/gameshots/uploader/internal/response"
)

// Handler holds HTTP handlers for the listing endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a new listing Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type itemBody struct {
	Key              string     `json:"key"              example:"games/7/1700000000000-1a2b3c4d-My_Photo.PNG"`
	Size             int64      `json:"size"             example:"48213"`
	LastModified     *time.Time `json:"lastModified"     example:"2024-01-02T00:00:00Z"`
	DirectURL        string     `json:"directUrl"        example:"http://localhost:9000/uploads/games/7/1700000000000-1a2b3c4d-My_Photo.PNG"`
	SignedPreviewURL string     `json:"signedPreviewUrl" example:"http://localhost:9000/uploads/games/7/1700000000000-1a2b3c4d-My_Photo.PNG?X-Amz-Algorithm=AWS4-HMAC-SHA256"`
}

type listResponse struct {
	Items []itemBody `json:"items"`
}

// ListUploads godoc
//
//	@Summary		List uploads
//	@Description	Lists up to 200 stored objects, newest first, each with a direct URL and a signed preview URL.
//	@Tags			uploads
//	@Produce		json
//	@Success		200	{object}	listResponse
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/uploads [get]
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("uploads: %v", err)
		response.InternalError(w, "failed to list uploads")
		return
	}

	body := listResponse{Items: make([]itemBody, 0, len(items))}
	for _, it := range items {
		body.Items = append(body.Items, itemBody{
			Key:              it.Key,
			Size:             it.Size,
			LastModified:     it.LastModified,
			DirectURL:        it.DirectURL,
			SignedPreviewURL: it.Preview.URL,
		})
	}
	response.OK(w, body)
}
