package oidc

import (
	"context"
	"net/url"
)

// Identificadores fijos del protocolo de token exchange.
const (
	// GrantTypeTokenExchange es el grant type de RFC 8693.
	GrantTypeTokenExchange = "urn:ietf:params:oauth:grant-type:token-exchange"

	// TokenTypeAccessToken es el único token-type URI soportado, tanto para
	// el subject/actor token presentado como para el token emitido.
	TokenTypeAccessToken = "urn:ietf:params:oauth:token-type:access_token"
)

// TokenInfo es el resultado de resolver un access token opaco/serializado
// contra el runtime: identidad, ownership y estado de vida.
type TokenInfo struct {
	// JTI es el identificador interno del token (id del record).
	JTI string

	// Kind es el tipo de entidad resuelto (debe ser AccessToken para exchange).
	Kind string

	// Subject es el account id del dueño del token.
	Subject string

	// ClientID es el cliente al que se emitió el token.
	ClientID string

	// GrantID referencia el consent grant que respalda el token.
	GrantID string

	// SessionID referencia la sesión de origen, si existe.
	SessionID string

	// Scope es el scope otorgado, space-delimited.
	Scope string

	// Extra son claims adicionales que el token arrastra.
	Extra map[string]any

	// Active indica que el token está vivo: no expirado, no revocado.
	Active bool
}

// TokenReader resuelve tokens presentados (subject_token / actor_token).
// Capacidad consumida del runtime OAuth/OIDC; este core no la reimplementa,
// solo la invoca. Retorna repository.ErrNotFound si el token no resuelve.
type TokenReader interface {
	ReadAccessToken(ctx context.Context, token string) (*TokenInfo, error)
}

// IssueTokenInput son los parámetros para acuñar un access token derivado.
type IssueTokenInput struct {
	AccountID string
	ClientID  string
	GrantID   string
	Scope     string
	Audience  string

	// GrantType etiqueta el token con el grant que lo originó (claim gty).
	GrantType string

	// Claims son claims extra a embeber (ej: act para delegación).
	Claims map[string]any
}

// IssuedToken es el resultado de acuñar un token.
type IssuedToken struct {
	Value     string
	Type      string // "Bearer"
	ExpiresIn int64  // segundos
	JTI       string
}

// TokenIssuer construye y persiste un access token nuevo. La persistencia
// re-entra al Adapter (kind AccessToken) — el emisor no escribe al store
// por fuera de él.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, input IssueTokenInput) (*IssuedToken, error)
}

// GrantRequest es un token request ya autenticado que el runtime despacha
// a un grant handler registrado.
type GrantRequest struct {
	// ClientID es el cliente OAuth autenticado que hace el request.
	ClientID string

	// Form contiene solo los parámetros aceptados por el handler.
	Form url.Values
}

// GrantResponse es el body JSON que el handler produce en éxito.
type GrantResponse map[string]any

// GrantHandler es un grant type adicional registrable en el runtime.
// El runtime despacha el request cuando grant_type coincide y espera un
// body de respuesta o uno de los errores OAuth estándar.
type GrantHandler interface {
	// GrantType retorna el identificador del grant (ej: RFC 8693 URN).
	GrantType() string

	// Params retorna los nombres de parámetro que el handler acepta;
	// el runtime filtra el form a este set antes de despachar.
	Params() []string

	// Handle procesa el request y retorna el body de éxito o un error
	// OAuth (exchange.Err*).
	Handle(ctx context.Context, req GrantRequest) (GrantResponse, error)
}
