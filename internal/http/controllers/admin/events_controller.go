package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/tokenbridge/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/tokenbridge/internal/http/errors"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/admin"
)

// EventsController expone el audit trail: GET /v1/admin/events?client_id=X&limit=N&offset=M
type EventsController struct {
	service svc.EventService
}

// NewEventsController crea el controller de eventos.
func NewEventsController(service svc.EventService) *EventsController {
	return &EventsController{service: service}
}

// Register monta la ruta del controller.
func (c *EventsController) Register(r chi.Router) {
	r.Get("/events", c.List)
}

func (c *EventsController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := strings.TrimSpace(q.Get("client_id"))
	if clientID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("client_id query param required"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	events, total, err := c.service.ListByClient(r.Context(), clientID, limit, offset)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}

	resp := dto.EventListResponse{
		Events: make([]dto.EventResponse, 0, len(events)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
