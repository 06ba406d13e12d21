// Package secrets genera y fingerprinta secrets de clientes.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// clientSecretBytes es la entropía de los secrets generados por el servidor.
const clientSecretBytes = 32

// NewClientSecret genera un secret aleatorio (base64url sin padding).
func NewClientSecret() (string, error) {
	b := make([]byte, clientSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Fingerprint devuelve sha256(s) en base64url sin padding, para loguear
// secrets sin exponer el valor.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
