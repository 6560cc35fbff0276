package upload

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gameshots/uploader/internal/apperr"
	"github.com/gameshots/uploader/internal/response"
)

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type uploadURLRequest struct {
	FileName    string `json:"fileName"    example:"My Photo.PNG"`
	ContentType string `json:"contentType" example:"image/png"`
	GameID      string `json:"gameId"      example:"7"`
	Size        int64  `json:"size"        example:"48213"`
}

type uploadURLResponse struct {
	UploadURL string    `json:"uploadUrl" example:"http://localhost:9000/uploads/games/7/1700000000000-1a2b3c4d-My_Photo.PNG?X-Amz-Algorithm=AWS4-HMAC-SHA256"`
	Key       string    `json:"key"       example:"games/7/1700000000000-1a2b3c4d-My_Photo.PNG"`
	ExpiresAt time.Time `json:"expiresAt" example:"2024-01-01T12:05:00Z"`
}

type grantsResponse struct {
	Items []GrantRecord `json:"items"`
}

// CreateUploadURL godoc
//
//	@Summary		Create upload URL
//	@Description	Derives a fresh storage key and returns a PUT URL signed for it. Upload the file with the same Content-Type before the URL expires.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Param			request	body		uploadURLRequest	true	"File to upload"
//	@Success		200		{object}	uploadURLResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload-url [post]
func (h *Handler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.svc.RequestUpload(r.Context(), Request{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		NamespaceID: req.GameID,
		Size:        req.Size,
	})
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, verr.Message)
			return
		}
		log.Printf("upload-url: %v", err)
		response.InternalError(w, "failed to create upload url")
		return
	}

	response.OK(w, uploadURLResponse{
		UploadURL: res.Grant.URL,
		Key:       res.Key,
		ExpiresAt: res.Grant.ExpiresAt.UTC(),
	})
}

// ListGrants godoc
//
//	@Summary		List issued upload grants
//	@Description	Returns the most recent upload grants from the ledger, newest first. Only available when a database is configured.
//	@Tags			uploads
//	@Produce		json
//	@Param			gameId	query		string	false	"Restrict to one game"
//	@Param			limit	query		int		false	"Maximum entries (default 50, max 200)"
//	@Success		200		{object}	grantsResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload-grants [get]
func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	records, err := h.svc.RecentGrants(r.Context(), r.URL.Query().Get("gameId"), limit)
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, verr.Message)
			return
		}
		log.Printf("upload-grants: %v", err)
		response.InternalError(w, "failed to list upload grants")
		return
	}

	response.OK(w, grantsResponse{Items: records})
}
