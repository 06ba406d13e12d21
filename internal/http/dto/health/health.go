// Package health contiene DTOs para health checks.
package health

import "time"

// HealthStatus es el estado de un componente individual.
type HealthStatus struct {
	Status  string `json:"status"` // ok | error
	Message string `json:"message,omitempty"`
}

// HealthResponse es la respuesta de /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"` // ready | degraded | unavailable
	Components map[string]HealthStatus `json:"components"`
	Timestamp  time.Time               `json:"timestamp"`
	Version    string                  `json:"version,omitempty"`
}
