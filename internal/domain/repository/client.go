package repository

import (
	"context"
	"time"
)

// Client es un cliente OAuth registrado, lo mínimo necesario para
// autenticar al caller del token endpoint. La metadata completa del
// cliente (redirect URIs, grant types, etc.) es dueña del runtime externo.
type Client struct {
	ID         string
	ClientID   string
	Name       string
	SecretHash string // bcrypt
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ClientInput contiene los datos para registrar un cliente.
type ClientInput struct {
	ClientID   string
	Name       string
	SecretHash string
	Enabled    bool
}

// ClientRepository define operaciones sobre el registro de clientes.
type ClientRepository interface {
	// Create registra un cliente. Retorna ErrConflict si el client_id ya existe.
	Create(ctx context.Context, input ClientInput) (*Client, error)

	// GetByClientID busca por client_id. Retorna ErrNotFound si no existe.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)

	// List lista todos los clientes registrados.
	List(ctx context.Context) ([]Client, error)

	// Delete elimina un cliente. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, clientID string) error
}
