package repository

import (
	"context"
	"time"
)

// TokenRecord representa una unidad persistida del runtime OAuth/OIDC.
// El par (ID, Kind) identifica el registro; el payload es un blob opaco
// controlado por el runtime, del que solo se indexan tres campos conocidos.
type TokenRecord struct {
	ID         string
	Kind       string
	Payload    map[string]any
	GrantID    *string
	UserCode   *string
	UID        *string
	ExpiresAt  *time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Expired indica si el registro ya venció respecto a now.
func (r *TokenRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// UpsertRecordInput contiene los datos para insertar o reemplazar un registro.
type UpsertRecordInput struct {
	ID        string
	Kind      string
	Payload   map[string]any
	GrantID   *string
	UserCode  *string
	UID       *string
	ExpiresAt *time.Time
}

// RecordRepository define operaciones sobre el token record store.
//
// El repositorio es deliberadamente "tonto": retorna registros vencidos o
// consumidos tal cual están; la semántica de lectura (borrado lazy, payload
// sanitizado) vive en el adapter de persistencia (internal/oidc).
type RecordRepository interface {
	// Upsert inserta o reemplaza el registro con la misma (id, kind).
	Upsert(ctx context.Context, input UpsertRecordInput) error

	// Get busca por (kind, id). Retorna ErrNotFound si no existe.
	Get(ctx context.Context, kind, id string) (*TokenRecord, error)

	// GetByUserCode busca por user_code dentro del kind dado.
	GetByUserCode(ctx context.Context, kind, userCode string) (*TokenRecord, error)

	// GetByUID busca por uid dentro del kind dado.
	GetByUID(ctx context.Context, kind, uid string) (*TokenRecord, error)

	// Delete elimina el registro (kind, id). No-op si no existe.
	Delete(ctx context.Context, kind, id string) error

	// Consume marca consumed_at = NOW() si aún no estaba marcado.
	// Idempotente: una segunda llamada no mueve el timestamp.
	// No-op si el registro no existe.
	Consume(ctx context.Context, kind, id string) error

	// DeleteByGrantKinds elimina todo registro de los kinds dados que
	// comparta el grant id. Retorna la cantidad eliminada.
	DeleteByGrantKinds(ctx context.Context, grantID string, kinds []string) (int, error)

	// DeleteByGrant elimina todo registro (cualquier kind) con ese grant id.
	DeleteByGrant(ctx context.Context, grantID string) (int, error)

	// DeleteExpired elimina todo registro vencido respecto a now, en todos
	// los kinds. Retorna la cantidad eliminada. Idempotente y seguro de
	// ejecutar concurrentemente.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
