package jwt

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
)

// Reader resuelve access tokens presentados: valida la firma EdDSA y luego
// consulta el record por jti a través del adapter. El record manda: un JWT
// con firma válida pero sin record (revocado, expirado y cosechado) no
// resuelve. Backend de referencia del contrato oidc.TokenReader.
type Reader struct {
	Iss  string
	Keys *KeySet

	store *oidc.Adapter
}

// NewReader crea el resolver sobre la fábrica de adapters.
func NewReader(iss string, keys *KeySet, adapters *oidc.AdapterFactory) *Reader {
	return &Reader{
		Iss:   iss,
		Keys:  keys,
		store: adapters.For(oidc.KindAccessToken),
	}
}

// ReadAccessToken valida firma e issuer, extrae el jti y resuelve el record
// vivo. Retorna repository.ErrNotFound (envuelto) si el token no resuelve.
func (r *Reader) ReadAccessToken(ctx context.Context, token string) (*oidc.TokenInfo, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" && kid != r.Keys.KID {
			return nil, errors.New("unknown_kid")
		}
		return ed25519.PublicKey(r.Keys.Pub), nil
	}

	tok, err := jwtv5.Parse(token, keyfunc, jwtv5.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("jwt: invalid token: %w", repository.ErrNotFound)
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, fmt.Errorf("jwt: unexpected claims type: %w", repository.ErrNotFound)
	}
	if r.Iss != "" {
		if iss, _ := claims["iss"].(string); iss != r.Iss {
			return nil, fmt.Errorf("jwt: issuer mismatch: %w", repository.ErrNotFound)
		}
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, fmt.Errorf("jwt: missing jti: %w", repository.ErrNotFound)
	}

	// El Find del adapter ya cosecha expirados; si no hay record el token
	// fue revocado o venció.
	payload, err := r.store.Find(ctx, jti)
	if err != nil {
		return nil, err
	}
	return tokenInfoFromPayload(jti, payload), nil
}

// tokenInfoFromPayload reconstruye el TokenInfo desde el payload persistido.
// Los campos conocidos se extraen; el resto queda como claims extra.
func tokenInfoFromPayload(jti string, payload map[string]any) *oidc.TokenInfo {
	info := &oidc.TokenInfo{
		JTI:    jti,
		Kind:   oidc.KindAccessToken,
		Active: true,
	}
	info.Subject, _ = payload["sub"].(string)
	info.ClientID, _ = payload["clientId"].(string)
	info.GrantID, _ = payload["grantId"].(string)
	info.SessionID, _ = payload["sessionId"].(string)
	info.Scope, _ = payload["scope"].(string)

	extra := map[string]any{}
	for k, v := range payload {
		switch k {
		case "sub", "clientId", "grantId", "sessionId", "scope", "aud", "iat", "exp", "gty", "consumed":
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		info.Extra = extra
	}
	return info
}
