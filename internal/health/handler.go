// Package health reports whether the store and the optional ledger database
// are reachable.
package health

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gameshots/uploader/internal/response"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Handler runs every registered check with a shared timeout.
type Handler struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewHandler creates a Handler with a 3 second timeout.
func NewHandler() *Handler {
	return &Handler{checks: map[string]CheckFunc{}, timeout: 3 * time.Second}
}

// Register adds a named check. It must be called before serving.
func (h *Handler) Register(name string, check CheckFunc) {
	h.checks[name] = check
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check runs the checks and answers 200 when all pass, 503 otherwise. Failure
// details are logged, not returned.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Printf("health: %s check failed: %v", name, err)
			resp.Checks[name] = "error"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, resp)
}
