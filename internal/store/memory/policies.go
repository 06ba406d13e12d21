package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

type policyRepo struct {
	mu   sync.RWMutex
	byID map[string]*storedPolicy
	seq  int64
}

// storedPolicy agrega un número de inserción para desempatar cuando dos
// policies comparten created_at (el reloj no tiene resolución infinita).
type storedPolicy struct {
	repository.ExchangePolicy
	seq int64
}

func newPolicyRepo() *policyRepo {
	return &policyRepo{byID: map[string]*storedPolicy{}}
}

func (r *policyRepo) Create(ctx context.Context, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.seq++
	p := &storedPolicy{
		ExchangePolicy: repository.ExchangePolicy{
			ID:                 uuid.NewString(),
			ClientID:           input.ClientID,
			Priority:           input.Priority,
			Subject:            input.Subject,
			SubjectTokenTypes:  append([]string(nil), input.SubjectTokenTypes...),
			Audiences:          append([]string(nil), input.Audiences...),
			Scopes:             append([]string(nil), input.Scopes...),
			ActorTokenRequired: input.ActorTokenRequired,
			Enabled:            input.Enabled,
			CreatedAt:          now,
			UpdatedAt:          now,
		},
		seq: r.seq,
	}
	r.byID[p.ID] = p
	out := p.ExchangePolicy
	return &out, nil
}

func (r *policyRepo) GetByID(ctx context.Context, id string) (*repository.ExchangePolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := p.ExchangePolicy
	return &out, nil
}

func (r *policyRepo) Update(ctx context.Context, id string, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.ClientID = input.ClientID
	p.Priority = input.Priority
	p.Subject = input.Subject
	p.SubjectTokenTypes = append([]string(nil), input.SubjectTokenTypes...)
	p.Audiences = append([]string(nil), input.Audiences...)
	p.Scopes = append([]string(nil), input.Scopes...)
	p.ActorTokenRequired = input.ActorTokenRequired
	p.Enabled = input.Enabled
	p.UpdatedAt = time.Now()
	out := p.ExchangePolicy
	return &out, nil
}

func (r *policyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *policyRepo) ListByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	return r.list(clientID, false), nil
}

func (r *policyRepo) ListEnabledByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	return r.list(clientID, true), nil
}

func (r *policyRepo) list(clientID string, enabledOnly bool) []repository.ExchangePolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*storedPolicy
	for _, p := range r.byID {
		if p.ClientID != clientID {
			continue
		}
		if enabledOnly && !p.Enabled {
			continue
		}
		matched = append(matched, p)
	}

	// priority DESC, created_at ASC, inserción ASC
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].seq < matched[j].seq
	})

	out := make([]repository.ExchangePolicy, 0, len(matched))
	for _, p := range matched {
		out = append(out, p.ExchangePolicy)
	}
	return out
}
