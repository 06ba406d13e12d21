package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/tokenbridge/internal/http/errors"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// RateLimitResult contiene el resultado de una consulta al rate limiter.
type RateLimitResult struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// RateLimiter define la interfaz mínima para un rate limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey genera una clave basada solo en IP.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r)
}

// IPPathRateKey genera una clave basada en IP + Path (sin leer el body).
// Separa límites por endpoint sin depender del contenido.
func IPPathRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

// RateLimitConfig configura el comportamiento del middleware de rate limiting.
type RateLimitConfig struct {
	Limiter   RateLimiter
	KeyFunc   RateKeyFunc
	Whitelist []string // Paths excluidos del rate limiting (ej: /healthz)
}

// WithRateLimit crea un middleware de rate limiting.
// Si el limiter falla (ej: redis caído) el request pasa: fail-open.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPPathRateKey
	}

	whitelistSet := make(map[string]struct{})
	for _, p := range cfg.Whitelist {
		whitelistSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelistSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				retry := int64(res.RetryAfter.Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
