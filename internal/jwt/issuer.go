package jwt

import (
	"context"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/tokenbridge/internal/oidc"
)

// Issuer firma access tokens EdDSA y los persiste como records de kind
// AccessToken a través del adapter; nunca escribe al store por fuera de él.
// Es el backend de referencia del contrato oidc.TokenIssuer.
type Issuer struct {
	Iss       string        // "iss"
	Keys      *KeySet       // clave de firma activa
	AccessTTL time.Duration // TTL por defecto (ej: 15m)

	store *oidc.Adapter // adapter kind-scoped a AccessToken
}

// NewIssuer crea el emisor sobre la fábrica de adapters.
func NewIssuer(iss string, keys *KeySet, adapters *oidc.AdapterFactory) *Issuer {
	return &Issuer{
		Iss:       iss,
		Keys:      keys,
		AccessTTL: 15 * time.Minute,
		store:     adapters.For(oidc.KindAccessToken),
	}
}

// IssueAccessToken emite un Access Token: firma el JWT con la clave activa
// y persiste el record (el JWT es la representación; el record es la fuente
// de verdad de vigencia y revocación).
func (i *Issuer) IssueAccessToken(ctx context.Context, input oidc.IssueTokenInput) (*oidc.IssuedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)
	jti := uuid.NewString()

	claims := jwtv5.MapClaims{
		"iss":       i.Iss,
		"sub":       input.AccountID,
		"aud":       input.Audience,
		"jti":       jti,
		"client_id": input.ClientID,
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"exp":       exp.Unix(),
	}
	if input.Scope != "" {
		claims["scope"] = input.Scope
	}
	if input.GrantType != "" {
		claims["gty"] = input.GrantType
	}
	for k, v := range input.Claims {
		claims[k] = v
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Keys.Priv)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"sub":      input.AccountID,
		"clientId": input.ClientID,
		"scope":    input.Scope,
		"aud":      input.Audience,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	if input.GrantID != "" {
		payload["grantId"] = input.GrantID
	}
	if input.GrantType != "" {
		payload["gty"] = input.GrantType
	}
	for k, v := range input.Claims {
		payload[k] = v
	}
	if err := i.store.Upsert(ctx, jti, payload, i.AccessTTL); err != nil {
		return nil, err
	}

	return &oidc.IssuedToken{
		Value:     signed,
		Type:      "Bearer",
		ExpiresIn: int64(i.AccessTTL.Seconds()),
		JTI:       jti,
	}, nil
}

// JWKSJSON expone el JWKS actual.
func (i *Issuer) JWKSJSON() []byte {
	return i.Keys.JWKSJSON()
}
