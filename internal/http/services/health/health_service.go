// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	dto "github.com/dropDatabas3/tokenbridge/internal/http/dto/health"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	// DBCheck hace ping al record store (crítico).
	DBCheck func(ctx context.Context) error
	// CacheCheck hace ping al cache (no crítico).
	CacheCheck func(ctx context.Context) error
}

type healthService struct {
	deps Deps
}

// NewHealthService crea el service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		response.Version = v
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) Record store (crítico)
	if s.deps.DBCheck != nil {
		if err := s.deps.DBCheck(ctx); err != nil {
			response.Components["store"] = dto.HealthStatus{
				Status:  "error",
				Message: fmt.Sprintf("unavailable: %v", err),
			}
			hasCriticalErrors = true
			log.Error("store unavailable", logger.Err(err))
		} else {
			response.Components["store"] = dto.HealthStatus{Status: "ok"}
		}
	}

	// 2) Cache (no crítico: el matcher funciona sin cache)
	if s.deps.CacheCheck != nil {
		if err := s.deps.CacheCheck(ctx); err != nil {
			response.Components["cache"] = dto.HealthStatus{
				Status:  "error",
				Message: err.Error(),
			}
			hasErrors = true
			log.Warn("cache unavailable", logger.Err(err))
		} else {
			response.Components["cache"] = dto.HealthStatus{Status: "ok"}
		}
	}

	switch {
	case hasCriticalErrors:
		response.Status = "unavailable"
	case hasErrors:
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}
