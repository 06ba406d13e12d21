// Package admin contiene controllers para endpoints administrativos.
package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	dto "github.com/dropDatabas3/tokenbridge/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/tokenbridge/internal/http/errors"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/admin"
)

// Controllers agrupa los controllers del admin API.
type Controllers struct {
	Policies *PoliciesController
	Clients  *ClientsController
	Events   *EventsController
}

// Deps son las dependencias para construir los controllers admin.
type Deps struct {
	Policies svc.PolicyService
	Clients  svc.ClientService
	Events   svc.EventService
}

// NewControllers construye el set completo.
func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Policies: NewPoliciesController(d.Policies),
		Clients:  NewClientsController(d.Clients),
		Events:   NewEventsController(d.Events),
	}
}

// Register monta todas las rutas admin en el router dado.
func (c *Controllers) Register(r chi.Router) {
	c.Policies.Register(r)
	c.Clients.Register(r)
	c.Events.Register(r)
}

// ─── Helpers ───

func mapError(err error) *httperrors.AppError {
	switch {
	case repository.IsNotFound(err):
		return httperrors.ErrNotFound.WithDetail(err.Error())
	case repository.IsConflict(err):
		return httperrors.ErrAlreadyExists.WithDetail(err.Error())
	case isBadInput(err):
		return httperrors.ErrBadRequest.WithDetail(err.Error())
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

func isBadInput(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") || strings.Contains(msg, "invalid value") ||
		strings.Contains(msg, "must be")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toPolicyResponse(p repository.ExchangePolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		ID:                 p.ID,
		ClientID:           p.ClientID,
		Priority:           p.Priority,
		Subject:            p.Subject,
		SubjectTokenTypes:  p.SubjectTokenTypes,
		Audiences:          p.Audiences,
		Scopes:             p.Scopes,
		ActorTokenRequired: p.ActorTokenRequired,
		Enabled:            p.Enabled,
		CreatedAt:          fmtTime(p.CreatedAt),
		UpdatedAt:          fmtTime(p.UpdatedAt),
	}
}

func toClientResponse(c repository.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID,
		ClientID:  c.ClientID,
		Name:      c.Name,
		Enabled:   c.Enabled,
		CreatedAt: fmtTime(c.CreatedAt),
	}
}

func toEventResponse(e repository.ExchangeEvent) dto.EventResponse {
	return dto.EventResponse{
		ID:                e.ID,
		ClientID:          e.ClientID,
		PolicyID:          e.PolicyID,
		Subject:           e.Subject,
		SubjectTokenType:  e.SubjectTokenType,
		SubjectTokenID:    e.SubjectTokenID,
		RequestedAudience: e.RequestedAudience,
		GrantedAudience:   e.GrantedAudience,
		RequestedScopes:   e.RequestedScopes,
		GrantedScopes:     e.GrantedScopes,
		ActorSubject:      e.ActorSubject,
		Success:           e.Success,
		Error:             e.Error,
		IssuedTokenID:     e.IssuedTokenID,
		CreatedAt:         fmtTime(e.CreatedAt),
	}
}
