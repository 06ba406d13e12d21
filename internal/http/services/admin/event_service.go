package admin

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// EventService expone el audit trail de exchanges (solo lectura).
type EventService interface {
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]repository.ExchangeEvent, int, error)
}

type eventService struct {
	events repository.EventRepository
}

// NewEventService crea el servicio de eventos.
func NewEventService(events repository.EventRepository) EventService {
	return &eventService{events: events}
}

func (s *eventService) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]repository.ExchangeEvent, int, error) {
	if clientID == "" {
		return nil, 0, fmt.Errorf("client_id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.events.ListByClient(ctx, clientID, limit, offset)
}
