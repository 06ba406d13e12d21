package oidc

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/metrics"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// AdapterFactory construye adapters de persistencia por kind sobre un
// mismo record store. El logger inyectado es uniforme para todos los
// kinds; no hay logging especial por tipo de entidad.
type AdapterFactory struct {
	records repository.RecordRepository
	log     *zap.Logger
}

// NewAdapterFactory crea la fábrica.
func NewAdapterFactory(records repository.RecordRepository, log *zap.Logger) *AdapterFactory {
	if log == nil {
		log = logger.Named("oidc.adapter")
	}
	return &AdapterFactory{records: records, log: log}
}

// For retorna el adapter para un kind.
func (f *AdapterFactory) For(kind string) *Adapter {
	return &Adapter{kind: kind, records: f.records, log: f.log.With(logger.Kind(kind))}
}

// Adapter implementa el contrato de storage que el runtime OAuth/OIDC espera
// para un kind de entidad. El storage físico es una sola tabla multi-kind:
// varias operaciones (revocación por grant, sweep de expirados) actúan a
// través de todos los kinds aunque se invoquen desde una instancia kind-scoped.
//
// Sin reintentos: un fallo de storage se propaga al runtime tal cual.
// Reintentar un Consume tras un fallo ambiguo rompería la garantía de
// single-use de los tokens de un solo uso.
type Adapter struct {
	kind    string
	records repository.RecordRepository
	log     *zap.Logger
}

// Kind retorna el kind de este adapter.
func (a *Adapter) Kind() string { return a.kind }

// Upsert inserta o reemplaza el registro (id, kind). Si expiresIn > 0 el
// registro vence en now+expiresIn; si no, no expira por este mecanismo.
// Los campos grantId/userCode/uid del payload se extraen para indexar;
// el resto del payload es opaco y se persiste sin interpretar.
func (a *Adapter) Upsert(ctx context.Context, id string, payload map[string]any, expiresIn time.Duration) error {
	metrics.StoreOps.WithLabelValues("upsert", a.kind).Inc()

	var expiresAt *time.Time
	if expiresIn > 0 {
		t := time.Now().Add(expiresIn)
		expiresAt = &t
	}

	input := repository.UpsertRecordInput{
		ID:        id,
		Kind:      a.kind,
		Payload:   payload,
		GrantID:   payloadString(payload, "grantId"),
		UserCode:  payloadString(payload, "userCode"),
		UID:       payloadString(payload, "uid"),
		ExpiresAt: expiresAt,
	}
	if err := a.records.Upsert(ctx, input); err != nil {
		return err
	}
	a.log.Debug("record upserted", logger.RecordID(id))
	return nil
}

// Find busca por id. Un registro vencido se elimina en el acto y se reporta
// como inexistente. El payload retornado viene sanitizado: claims numéricos
// coercionados y, si el registro fue consumido, un campo consumed con el
// timestamp Unix de consumo.
func (a *Adapter) Find(ctx context.Context, id string) (map[string]any, error) {
	metrics.StoreOps.WithLabelValues("find", a.kind).Inc()
	rec, err := a.records.Get(ctx, a.kind, id)
	if err != nil {
		return nil, err
	}
	return a.liveOrReap(ctx, rec)
}

// FindByUserCode busca por user_code, con la misma semántica que Find.
func (a *Adapter) FindByUserCode(ctx context.Context, userCode string) (map[string]any, error) {
	metrics.StoreOps.WithLabelValues("find_by_user_code", a.kind).Inc()
	rec, err := a.records.GetByUserCode(ctx, a.kind, userCode)
	if err != nil {
		return nil, err
	}
	return a.liveOrReap(ctx, rec)
}

// FindByUID busca por uid, con la misma semántica que Find.
func (a *Adapter) FindByUID(ctx context.Context, uid string) (map[string]any, error) {
	metrics.StoreOps.WithLabelValues("find_by_uid", a.kind).Inc()
	rec, err := a.records.GetByUID(ctx, a.kind, uid)
	if err != nil {
		return nil, err
	}
	return a.liveOrReap(ctx, rec)
}

// Destroy elimina el registro. No-op si no existe.
func (a *Adapter) Destroy(ctx context.Context, id string) error {
	metrics.StoreOps.WithLabelValues("destroy", a.kind).Inc()
	if err := a.records.Delete(ctx, a.kind, id); err != nil {
		return err
	}
	a.log.Debug("record destroyed", logger.RecordID(id))
	return nil
}

// Consume marca el registro como consumido (single-use redimido).
// Idempotente; el registro no se borra por consumo, sigue las reglas
// normales de expiración/destroy.
func (a *Adapter) Consume(ctx context.Context, id string) error {
	metrics.StoreOps.WithLabelValues("consume", a.kind).Inc()
	if err := a.records.Consume(ctx, a.kind, id); err != nil {
		return err
	}
	a.log.Debug("record consumed", logger.RecordID(id))
	return nil
}

// RevokeByGrantID elimina todo registro de kinds "grantables" que comparta
// el grant id, a través de todos los kinds. No-op si este adapter es de un
// kind no grantable.
func (a *Adapter) RevokeByGrantID(ctx context.Context, grantID string) error {
	if !isGrantable(a.kind) {
		return nil
	}
	metrics.StoreOps.WithLabelValues("revoke_by_grant", a.kind).Inc()
	n, err := a.records.DeleteByGrantKinds(ctx, grantID, grantableKinds)
	if err != nil {
		return err
	}
	if n > 0 {
		a.log.Debug("grant revoked", logger.GrantID(grantID), logger.Count(n))
	}
	return nil
}

// GrantCleaner elimina todo registro (cualquier kind) con ese grant id.
// Se usa cuando el consent grant mismo es revocado.
func (a *Adapter) GrantCleaner(ctx context.Context, grantID string) error {
	metrics.StoreOps.WithLabelValues("grant_cleaner", a.kind).Inc()
	n, err := a.records.DeleteByGrant(ctx, grantID)
	if err != nil {
		return err
	}
	if n > 0 {
		a.log.Debug("grant cleaned", logger.GrantID(grantID), logger.Count(n))
	}
	return nil
}

// CleanExpired elimina todo registro vencido, en todos los kinds.
// Idempotente y seguro de correr concurrentemente con cualquier otra
// operación: borrar un registro ya reemplazado es inocuo.
func (a *Adapter) CleanExpired(ctx context.Context) error {
	metrics.StoreOps.WithLabelValues("clean_expired", a.kind).Inc()
	n, err := a.records.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.SweepDeleted.Add(float64(n))
		a.log.Debug("expired records swept", logger.Count(n))
	}
	return nil
}

// liveOrReap aplica el borrado lazy de vencidos y sanitiza el payload.
func (a *Adapter) liveOrReap(ctx context.Context, rec *repository.TokenRecord) (map[string]any, error) {
	if rec.Expired(time.Now()) {
		if err := a.records.Delete(ctx, rec.Kind, rec.ID); err != nil {
			return nil, err
		}
		a.log.Debug("expired record reaped on read", logger.RecordID(rec.ID))
		return nil, repository.ErrNotFound
	}
	return sanitizePayload(rec), nil
}

// payloadString extrae un string no vacío del payload, o nil.
func payloadString(payload map[string]any, key string) *string {
	if payload == nil {
		return nil
	}
	if s, ok := payload[key].(string); ok && s != "" {
		return &s
	}
	return nil
}
