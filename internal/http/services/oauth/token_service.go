// Package oauth provee el servicio del token endpoint: autenticación del
// cliente y despacho del grant al handler registrado en el runtime.
package oauth

import (
	"context"
	"errors"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
)

// Errores estándar del token endpoint.
var (
	ErrTokenInvalidRequest       = errors.New("invalid_request")
	ErrTokenInvalidClient        = errors.New("invalid_client")
	ErrTokenUnsupportedGrantType = errors.New("unsupported_grant_type")
)

// TokenService procesa requests del token endpoint.
type TokenService interface {
	// Exchange autentica al cliente y despacha el grant_type al handler.
	Exchange(ctx context.Context, grantType string, creds ClientCredentials, form url.Values) (oidc.GrantResponse, error)
}

// ClientCredentials son las credenciales presentadas (Basic o body).
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

type tokenService struct {
	provider *oidc.Provider
	clients  repository.ClientRepository
}

// NewTokenService crea el servicio del token endpoint.
func NewTokenService(provider *oidc.Provider, clients repository.ClientRepository) TokenService {
	return &tokenService{provider: provider, clients: clients}
}

func (s *tokenService) Exchange(ctx context.Context, grantType string, creds ClientCredentials, form url.Values) (oidc.GrantResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.token"),
		logger.ClientID(creds.ClientID),
	)

	if grantType == "" {
		return nil, ErrTokenInvalidRequest
	}

	handler, ok := s.provider.Grant(grantType)
	if !ok {
		return nil, ErrTokenUnsupportedGrantType
	}

	if err := s.authenticate(ctx, creds); err != nil {
		log.Warn("client authentication failed", logger.Err(err))
		return nil, ErrTokenInvalidClient
	}

	// Filtrar el form a los parámetros que el handler declara.
	filtered := url.Values{}
	for _, p := range handler.Params() {
		if vs, ok := form[p]; ok {
			filtered[p] = vs
		}
	}

	return handler.Handle(ctx, oidc.GrantRequest{
		ClientID: creds.ClientID,
		Form:     filtered,
	})
}

func (s *tokenService) authenticate(ctx context.Context, creds ClientCredentials) error {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return errors.New("missing client credentials")
	}
	client, err := s.clients.GetByClientID(ctx, creds.ClientID)
	if err != nil {
		// Igualar el costo de un cliente inexistente al de un secret
		// incorrecto para no filtrar existencia por timing.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
			[]byte(creds.ClientSecret))
		return err
	}
	if !client.Enabled {
		return errors.New("client disabled")
	}
	return bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(creds.ClientSecret))
}
