package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/tokenbridge/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/tokenbridge/internal/http/errors"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/admin"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
)

// ClientsController maneja las rutas /v1/admin/clients
type ClientsController struct {
	service svc.ClientService
}

// NewClientsController crea el controller de clients.
func NewClientsController(service svc.ClientService) *ClientsController {
	return &ClientsController{service: service}
}

// Register monta las rutas del controller:
//
//	GET    /clients
//	POST   /clients
//	DELETE /clients/{clientID}
func (c *ClientsController) Register(r chi.Router) {
	r.Get("/clients", c.List)
	r.Post("/clients", c.Create)
	r.Delete("/clients/{clientID}", c.Delete)
}

func (c *ClientsController) List(w http.ResponseWriter, r *http.Request) {
	clients, err := c.service.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}

	resp := dto.ClientListResponse{Clients: make([]dto.ClientResponse, 0, len(clients)), Total: len(clients)}
	for _, cl := range clients {
		resp.Clients = append(resp.Clients, toClientResponse(cl))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *ClientsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("ClientsController.Create"),
	)

	var req dto.ClientCreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	client, generated, err := c.service.Create(ctx, req.ClientID, req.Name, req.Secret)
	if err != nil {
		log.Warn("create failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	writeJSON(w, http.StatusCreated, dto.ClientCreateResponse{
		Client: toClientResponse(*client),
		Secret: generated,
	})
}

func (c *ClientsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "clientID")); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
