package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"nucleval/pkg/contracts"
	api "nucleval/pkg/contracts/api/v1"
)

// HealthHandler reports liveness and build information
type HealthHandler struct {
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now()}
}

// HealthCheck handles GET /healthz
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.HealthResponse{
		Status:  "ok",
		Version: contracts.Version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// Version handles GET /api/v1/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
