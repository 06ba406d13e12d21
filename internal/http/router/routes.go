// Package router arma el mux HTTP: token endpoint, admin API, JWKS,
// health y métricas, cada grupo con su middleware chain.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/tokenbridge/internal/http/middlewares"
)

// Deps contiene los controllers y opciones del router.
type Deps struct {
	Token  *oauthctrl.TokenController
	Admin  *adminctrl.Controllers
	Health *healthctrl.HealthController

	// JWKS expone las claves públicas del emisor de referencia.
	JWKS http.Handler

	// AdminToken protege /v1/admin/* cuando no está vacío.
	AdminToken string

	// TokenLimiter limita el token endpoint por IP (opcional).
	TokenLimiter mw.RateLimiter

	// CORSAllowedOrigins habilita CORS cuando no está vacío.
	CORSAllowedOrigins []string

	// MetricsRegistry, si está seteado, expone /metrics.
	MetricsRegistry *prometheus.Registry
}

// New construye el mux completo.
func New(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/readyz", baseHandler(d, http.HandlerFunc(d.Health.Readyz)))

	// JWKS
	if d.JWKS != nil {
		mux.Handle("/.well-known/jwks.json", baseHandler(d, d.JWKS))
	}

	// Token endpoint
	mux.Handle("/oauth2/token", tokenHandler(d, http.HandlerFunc(d.Token.Token)))

	// ─── Admin API (subrouter chi, protegido por token estático) ───
	admin := chi.NewRouter()
	admin.Route("/v1/admin", func(r chi.Router) {
		d.Admin.Register(r)
	})
	mux.Handle("/v1/admin/", adminHandler(d, admin))

	// Métricas (sin middleware de logging: scrape frecuente)
	if d.MetricsRegistry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(d.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	return mux
}

// baseHandler: chain mínimo para endpoints de lectura.
func baseHandler(d Deps, h http.Handler) http.Handler {
	chain := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
	}
	if len(d.CORSAllowedOrigins) > 0 {
		chain = append(chain, mw.WithCORS(d.CORSAllowedOrigins))
	}
	chain = append(chain, mw.WithLogging())
	return mw.Chain(h, chain...)
}

// tokenHandler: chain del token endpoint, con no-store y rate limit por IP.
func tokenHandler(d Deps, h http.Handler) http.Handler {
	chain := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
	}
	if len(d.CORSAllowedOrigins) > 0 {
		chain = append(chain, mw.WithCORS(d.CORSAllowedOrigins))
	}
	if d.TokenLimiter != nil {
		chain = append(chain, mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.TokenLimiter,
			KeyFunc: mw.IPOnlyRateKey,
		}))
	}
	chain = append(chain, mw.WithLogging())
	return mw.Chain(h, chain...)
}

// adminHandler: chain del admin API, protegido por bearer token estático.
func adminHandler(d Deps, h http.Handler) http.Handler {
	chain := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		mw.RequireAdminToken(d.AdminToken),
		mw.WithLogging(),
	}
	return mw.Chain(h, chain...)
}
