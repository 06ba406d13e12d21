package oauth

import "net/http"

// JWKSHandler expone el JWKS del emisor en /.well-known/jwks.json.
// El JSON se genera una vez: la clave no rota en el backend de referencia.
func JWKSHandler(jwksJSON []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(jwksJSON)
	})
}
