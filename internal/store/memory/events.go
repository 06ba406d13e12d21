package memory

import (
	"context"
	"sync"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

type eventRepo struct {
	mu     sync.RWMutex
	events []repository.ExchangeEvent
}

func newEventRepo() *eventRepo {
	return &eventRepo{}
}

func (r *eventRepo) Create(ctx context.Context, ev *repository.ExchangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *eventRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]repository.ExchangeEvent, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []repository.ExchangeEvent
	// Más recientes primero: los eventos se appendan en orden de llegada.
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].ClientID == clientID {
			matched = append(matched, r.events[i])
		}
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}
