package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

type clientRepo struct {
	mu   sync.RWMutex
	byID map[string]*repository.Client // key: client_id
}

func newClientRepo() *clientRepo {
	return &clientRepo{byID: map[string]*repository.Client{}}
}

func (r *clientRepo) Create(ctx context.Context, input repository.ClientInput) (*repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[input.ClientID]; ok {
		return nil, repository.ErrConflict
	}
	now := time.Now()
	c := &repository.Client{
		ID:         uuid.NewString(),
		ClientID:   input.ClientID,
		Name:       input.Name,
		SecretHash: input.SecretHash,
		Enabled:    input.Enabled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.byID[c.ClientID] = c
	out := *c
	return &out, nil
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *clientRepo) List(ctx context.Context) ([]repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out, nil
}

func (r *clientRepo) Delete(ctx context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[clientID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, clientID)
	return nil
}
