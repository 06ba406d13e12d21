// Package exchange contiene el motor de token exchange: policy matcher,
// grant handler y audit trail.
package exchange

import (
	"errors"
	"strings"
)

// Errores OAuth2 estándar del grant handler. El controller del token
// endpoint los mapea al body JSON {"error","error_description"}.
var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidClient  = errors.New("invalid_client")
	ErrInvalidGrant   = errors.New("invalid_grant")
	ErrInvalidScope   = errors.New("invalid_scope")
	ErrInvalidTarget  = errors.New("invalid_target")
	ErrServerError    = errors.New("server_error")
)

// ScopeError es un invalid_scope que nombra los scopes ofensores, para que
// el cliente pueda depurar qué pidió de más.
type ScopeError struct {
	Scopes []string
}

func (e *ScopeError) Error() string {
	return "invalid_scope: scopes not permitted: " + strings.Join(e.Scopes, " ")
}

func (e *ScopeError) Unwrap() error { return ErrInvalidScope }

// ErrorCode retorna el código OAuth de un error del handler, o server_error
// si el error no pertenece a la taxonomía conocida.
func ErrorCode(err error) string {
	for _, sentinel := range []error{
		ErrInvalidRequest, ErrInvalidClient, ErrInvalidGrant,
		ErrInvalidScope, ErrInvalidTarget, ErrServerError,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "server_error"
}
