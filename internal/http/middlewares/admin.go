package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tokenbridge/internal/http/errors"
)

// RequireAdminToken valida un bearer token estático para la API admin.
// Si el token configurado está vacío, el acceso queda abierto (modo dev);
// Validate() del config lo exige no vacío en prod.
func RequireAdminToken(token string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("authorization header required"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid authorization header format"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin token mismatch"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
