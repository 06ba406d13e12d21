package repository

import (
	"context"
	"time"
)

// ExchangeEvent es el registro de auditoría inmutable de un intento de
// token exchange. Se escribe exactamente una vez por intento, tanto en
// éxito como en fallo; los campos no determinados al momento del fallo
// quedan en su zero value.
type ExchangeEvent struct {
	ID                string
	ClientID          string
	PolicyID          *string
	Subject           string
	SubjectTokenType  string
	SubjectTokenID    string
	RequestedAudience string
	GrantedAudience   string
	RequestedScopes   []string
	GrantedScopes     []string
	ActorSubject      *string
	Success           bool
	Error             string
	IssuedTokenID     *string
	CreatedAt         time.Time
}

// EventRepository define operaciones sobre el audit trail de exchanges.
// Es append-only: este core nunca actualiza ni borra eventos.
type EventRepository interface {
	// Create persiste un evento. El ID y CreatedAt deben venir seteados.
	Create(ctx context.Context, event *ExchangeEvent) error

	// ListByClient lista eventos de un cliente, más recientes primero.
	// Retorna también el total para paginación.
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]ExchangeEvent, int, error)
}
