package repository

import (
	"context"
	"time"
)

// Wildcard acepta cualquier valor en los campos de matching de una policy.
const Wildcard = "*"

// ExchangePolicy es una regla de administrador que autoriza token exchange
// para una combinación cliente/sujeto/audiencia/tipo de token.
type ExchangePolicy struct {
	ID       string
	ClientID string

	// Priority ordena la evaluación: mayor primero. A igual prioridad
	// desempata created_at ascendente (la más vieja gana).
	Priority int

	// Subject restringe el account id del sujeto. Vacío o "*" = cualquiera.
	Subject string

	// SubjectTokenTypes lista los token-type URIs aceptados.
	// Vacía o con "*" = cualquiera.
	SubjectTokenTypes []string

	// Audiences lista las audiencias destino permitidas.
	// Vacía o con "*" = cualquiera.
	Audiences []string

	// Scopes es la allow-list de scopes otorgables.
	// Vacía = hereda los scopes solicitados sin filtrar; con "*" = sin restricción.
	Scopes []string

	ActorTokenRequired bool
	Enabled            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExchangePolicyInput contiene los datos para crear o actualizar una policy.
type ExchangePolicyInput struct {
	ClientID           string
	Priority           int
	Subject            string
	SubjectTokenTypes  []string
	Audiences          []string
	Scopes             []string
	ActorTokenRequired bool
	Enabled            bool
}

// PolicyRepository define operaciones sobre exchange policies.
type PolicyRepository interface {
	// Create crea una policy. Retorna la policy con ID asignado.
	Create(ctx context.Context, input ExchangePolicyInput) (*ExchangePolicy, error)

	// GetByID busca una policy. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*ExchangePolicy, error)

	// Update reemplaza los campos de la policy. Retorna ErrNotFound si no existe.
	Update(ctx context.Context, id string, input ExchangePolicyInput) (*ExchangePolicy, error)

	// Delete elimina la policy. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error

	// ListByClient lista todas las policies de un cliente (cualquier estado),
	// ordenadas por priority DESC, created_at ASC.
	ListByClient(ctx context.Context, clientID string) ([]ExchangePolicy, error)

	// ListEnabledByClient lista solo las policies habilitadas, en el orden
	// de evaluación del matcher: priority DESC, created_at ASC.
	ListEnabledByClient(ctx context.Context, clientID string) ([]ExchangePolicy, error)
}
