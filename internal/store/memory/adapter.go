// Package memory implementa el adapter en memoria del store.
// Pensado para desarrollo y tests; replica la semántica del adapter
// PostgreSQL, incluyendo la serialización JSON del payload (los valores
// numéricos vuelven como float64, igual que desde una columna JSONB).
package memory

import (
	"context"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	store "github.com/dropDatabas3/tokenbridge/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return NewConnection(), nil
}

// NewConnection crea una conexión en memoria vacía.
// Exportado para que los tests construyan el store sin pasar por el registry.
func NewConnection() store.AdapterConnection {
	return &memConnection{
		records:  newRecordRepo(),
		policies: newPolicyRepo(),
		events:   newEventRepo(),
		clients:  newClientRepo(),
	}
}

type memConnection struct {
	records  *recordRepo
	policies *policyRepo
	events   *eventRepo
	clients  *clientRepo
}

func (c *memConnection) Name() string                   { return "memory" }
func (c *memConnection) Ping(ctx context.Context) error { return nil }
func (c *memConnection) Close() error                   { return nil }

func (c *memConnection) Records() repository.RecordRepository  { return c.records }
func (c *memConnection) Policies() repository.PolicyRepository { return c.policies }
func (c *memConnection) Events() repository.EventRepository    { return c.events }
func (c *memConnection) Clients() repository.ClientRepository  { return c.clients }
