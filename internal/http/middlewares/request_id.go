package middlewares

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
)

type ctxKey int

const requestIDKey ctxKey = iota

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// GetRequestID retorna el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

// WithRequestID genera o propaga un Request ID único para cada request.
// Si el cliente envía X-Request-ID, lo usa. Si no, genera uno nuevo.
// El ID se expone en el header de respuesta y se inyecta en el contexto.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" {
				var b [16]byte
				_, _ = rand.Read(b[:])
				rid = hex.EncodeToString(b[:])
			}

			w.Header().Set("X-Request-ID", rid)
			ctx := setRequestID(r.Context(), rid)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
