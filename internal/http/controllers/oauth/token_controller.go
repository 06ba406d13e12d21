// Package oauth - TokenController handles POST /oauth2/token
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tokenbridge/internal/exchange"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/oauth"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
)

// TokenController handles the OAuth2 token endpoint.
type TokenController struct {
	service svc.TokenService
}

// NewTokenController creates the controller.
func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token handles POST /oauth2/token
// Dispatches grant_type to the handlers registered on the runtime
// (currently: urn:ietf:params:oauth:grant-type:token-exchange).
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		c.writeOAuthError(w, http.StatusMethodNotAllowed, "invalid_request", "Only POST method is allowed")
		return
	}

	// Limit body size (64KB for OAuth forms)
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	if err := r.ParseForm(); err != nil {
		log.Warn("failed to parse form", logger.Err(err))
		c.writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	grantType := strings.TrimSpace(r.PostForm.Get("grant_type"))
	log = log.With(logger.String("grant_type", grantType))

	creds := c.extractCredentials(r)

	resp, err := c.service.Exchange(ctx, grantType, creds, r.PostForm)
	if err != nil {
		c.handleServiceError(w, err, ctx)
		return
	}

	c.writeTokenResponse(w, resp)
}

// extractCredentials lee client_id/client_secret de Basic auth o del body.
// Basic auth tiene precedencia (RFC 6749 §2.3.1).
func (c *TokenController) extractCredentials(r *http.Request) svc.ClientCredentials {
	if id, secret, ok := r.BasicAuth(); ok {
		return svc.ClientCredentials{ClientID: id, ClientSecret: secret}
	}
	return svc.ClientCredentials{
		ClientID:     strings.TrimSpace(r.PostForm.Get("client_id")),
		ClientSecret: r.PostForm.Get("client_secret"),
	}
}

func (c *TokenController) handleServiceError(w http.ResponseWriter, err error, ctx context.Context) {
	log := logger.From(ctx)

	switch {
	case errors.Is(err, svc.ErrTokenInvalidRequest):
		c.writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing or invalid parameters")
	case errors.Is(err, svc.ErrTokenInvalidClient):
		w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		c.writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
	case errors.Is(err, svc.ErrTokenUnsupportedGrantType):
		c.writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Grant type not supported")
	case errors.Is(err, exchange.ErrInvalidClient):
		w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		c.writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
	case errors.Is(err, exchange.ErrInvalidRequest),
		errors.Is(err, exchange.ErrInvalidGrant),
		errors.Is(err, exchange.ErrInvalidScope),
		errors.Is(err, exchange.ErrInvalidTarget):
		c.writeOAuthError(w, http.StatusBadRequest, exchange.ErrorCode(err), oauthDescription(err))
	default:
		log.Error("token endpoint error", logger.Err(err))
		c.writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
	}
}

// oauthDescription extrae la descripción para el cliente. El mensaje del
// handler viene en formato "<code>: <detalle>"; quedarnos con el detalle.
// Para errores de scope el detalle nombra los scopes ofensores.
func oauthDescription(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

func (c *TokenController) writeOAuthError(w http.ResponseWriter, status int, errorCode, description string) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func (c *TokenController) writeTokenResponse(w http.ResponseWriter, resp oidc.GrantResponse) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
