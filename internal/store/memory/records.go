package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

type recordRepo struct {
	mu      sync.RWMutex
	byKey   map[recordKey]*repository.TokenRecord
	byCode  map[string]recordKey // user_code -> key (único global)
	byUID   map[string]recordKey // uid -> key (único global)
}

type recordKey struct{ kind, id string }

func newRecordRepo() *recordRepo {
	return &recordRepo{
		byKey:  map[recordKey]*repository.TokenRecord{},
		byCode: map[string]recordKey{},
		byUID:  map[string]recordKey{},
	}
}

func (r *recordRepo) Upsert(ctx context.Context, input repository.UpsertRecordInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{kind: input.Kind, id: input.ID}

	// Unicidad global de user_code / uid (como los índices únicos en pg).
	if input.UserCode != nil {
		if owner, ok := r.byCode[*input.UserCode]; ok && owner != key {
			return repository.ErrConflict
		}
	}
	if input.UID != nil {
		if owner, ok := r.byUID[*input.UID]; ok && owner != key {
			return repository.ErrConflict
		}
	}

	// Limpiar índices del registro previo si existía.
	if prev, ok := r.byKey[key]; ok {
		r.dropIndexes(prev)
	}

	now := time.Now()
	rec := &repository.TokenRecord{
		ID:        input.ID,
		Kind:      input.Kind,
		Payload:   roundTrip(input.Payload),
		GrantID:   input.GrantID,
		UserCode:  input.UserCode,
		UID:       input.UID,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byKey[key] = rec
	if rec.UserCode != nil {
		r.byCode[*rec.UserCode] = key
	}
	if rec.UID != nil {
		r.byUID[*rec.UID] = key
	}
	return nil
}

func (r *recordRepo) Get(ctx context.Context, kind, id string) (*repository.TokenRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byKey[recordKey{kind: kind, id: id}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *recordRepo) GetByUserCode(ctx context.Context, kind, userCode string) (*repository.TokenRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.byCode[userCode]
	if !ok || key.kind != kind {
		return nil, repository.ErrNotFound
	}
	return copyRecord(r.byKey[key]), nil
}

func (r *recordRepo) GetByUID(ctx context.Context, kind, uid string) (*repository.TokenRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.byUID[uid]
	if !ok || key.kind != kind {
		return nil, repository.ErrNotFound
	}
	return copyRecord(r.byKey[key]), nil
}

func (r *recordRepo) Delete(ctx context.Context, kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey{kind: kind, id: id}
	if rec, ok := r.byKey[key]; ok {
		r.dropIndexes(rec)
		delete(r.byKey, key)
	}
	return nil
}

func (r *recordRepo) Consume(ctx context.Context, kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byKey[recordKey{kind: kind, id: id}]
	if !ok {
		return nil
	}
	if rec.ConsumedAt == nil {
		now := time.Now()
		rec.ConsumedAt = &now
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *recordRepo) DeleteByGrantKinds(ctx context.Context, grantID string, kinds []string) (int, error) {
	kindSet := map[string]bool{}
	for _, k := range kinds {
		kindSet[k] = true
	}
	return r.deleteWhere(func(rec *repository.TokenRecord) bool {
		return rec.GrantID != nil && *rec.GrantID == grantID && kindSet[rec.Kind]
	}), nil
}

func (r *recordRepo) DeleteByGrant(ctx context.Context, grantID string) (int, error) {
	return r.deleteWhere(func(rec *repository.TokenRecord) bool {
		return rec.GrantID != nil && *rec.GrantID == grantID
	}), nil
}

func (r *recordRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return r.deleteWhere(func(rec *repository.TokenRecord) bool {
		return rec.Expired(now)
	}), nil
}

func (r *recordRepo) deleteWhere(match func(*repository.TokenRecord) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, rec := range r.byKey {
		if match(rec) {
			r.dropIndexes(rec)
			delete(r.byKey, key)
			n++
		}
	}
	return n
}

// dropIndexes debe llamarse con el lock de escritura tomado.
func (r *recordRepo) dropIndexes(rec *repository.TokenRecord) {
	if rec.UserCode != nil {
		delete(r.byCode, *rec.UserCode)
	}
	if rec.UID != nil {
		delete(r.byUID, *rec.UID)
	}
}

// roundTrip serializa y deserializa el payload para imitar el viaje por una
// columna JSONB: los números vuelven como float64 y se corta cualquier
// aliasing con el mapa del caller.
func roundTrip(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func copyRecord(rec *repository.TokenRecord) *repository.TokenRecord {
	out := *rec
	out.Payload = roundTrip(rec.Payload)
	return &out
}
