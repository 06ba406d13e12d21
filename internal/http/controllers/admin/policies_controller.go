package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	dto "github.com/dropDatabas3/tokenbridge/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/tokenbridge/internal/http/errors"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/admin"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// PoliciesController maneja las rutas /v1/admin/policies
type PoliciesController struct {
	service svc.PolicyService
}

// NewPoliciesController crea el controller de policies.
func NewPoliciesController(service svc.PolicyService) *PoliciesController {
	return &PoliciesController{service: service}
}

// Register monta las rutas del controller:
//
//	GET    /policies?client_id=X
//	POST   /policies
//	GET    /policies/{id}
//	PUT    /policies/{id}
//	DELETE /policies/{id}
func (c *PoliciesController) Register(r chi.Router) {
	r.Get("/policies", c.List)
	r.Post("/policies", c.Create)
	r.Get("/policies/{id}", c.Get)
	r.Put("/policies/{id}", c.Update)
	r.Delete("/policies/{id}", c.Delete)
}

func (c *PoliciesController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("client_id query param required"))
		return
	}

	policies, err := c.service.ListByClient(ctx, clientID)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}

	resp := dto.PolicyListResponse{Policies: make([]dto.PolicyResponse, 0, len(policies)), Total: len(policies)}
	for _, p := range policies {
		resp.Policies = append(resp.Policies, toPolicyResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *PoliciesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("PoliciesController.Create"),
	)

	var req dto.PolicyCreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	input := repository.ExchangePolicyInput{
		ClientID:           req.ClientID,
		Priority:           req.Priority,
		Subject:            req.Subject,
		SubjectTokenTypes:  req.SubjectTokenTypes,
		Audiences:          req.Audiences,
		Scopes:             req.Scopes,
		ActorTokenRequired: req.ActorTokenRequired,
		Enabled:            enabled,
	}

	policy, err := c.service.Create(ctx, input)
	if err != nil {
		log.Warn("create failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toPolicyResponse(*policy))
}

func (c *PoliciesController) Get(w http.ResponseWriter, r *http.Request) {
	policy, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	writeJSON(w, http.StatusOK, toPolicyResponse(*policy))
}

func (c *PoliciesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req dto.PolicyUpdateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	// El client_id de una policy es inmutable: Update lo conserva.
	current, err := c.service.Get(ctx, id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	input := repository.ExchangePolicyInput{
		ClientID:           current.ClientID,
		Priority:           req.Priority,
		Subject:            req.Subject,
		SubjectTokenTypes:  req.SubjectTokenTypes,
		Audiences:          req.Audiences,
		Scopes:             req.Scopes,
		ActorTokenRequired: req.ActorTokenRequired,
		Enabled:            req.Enabled,
	}

	policy, err := c.service.Update(ctx, id, input)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	writeJSON(w, http.StatusOK, toPolicyResponse(*policy))
}

func (c *PoliciesController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
