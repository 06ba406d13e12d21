// Package health contiene el controller para health checks.
package health

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/tokenbridge/internal/http/dto/health"
	httperrors "github.com/dropDatabas3/tokenbridge/internal/http/errors"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/health"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea el controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	response := c.service.Check(r.Context())

	statusCode := http.StatusOK
	if response.Status == "unavailable" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, status int, v dto.HealthResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
