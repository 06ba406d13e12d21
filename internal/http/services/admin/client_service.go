package admin

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/tokenbridge/internal/audit"
	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
	"github.com/dropDatabas3/tokenbridge/internal/secrets"
)

// ClientService define las operaciones de clients para el admin API.
type ClientService interface {
	// Create registra un cliente. Si secret es vacío genera uno y lo
	// devuelve; es la única vez que el plaintext sale del servidor.
	Create(ctx context.Context, clientID, name, secret string) (*repository.Client, string, error)
	List(ctx context.Context) ([]repository.Client, error)
	Delete(ctx context.Context, clientID string) error
}

// clientService implementa ClientService sobre el repositorio.
type clientService struct {
	clients repository.ClientRepository
}

// NewClientService crea el servicio de clients.
func NewClientService(clients repository.ClientRepository) ClientService {
	return &clientService{clients: clients}
}

func (s *clientService) Create(ctx context.Context, clientID, name, secret string) (*repository.Client, string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.clients"),
		logger.Op("Create"),
		logger.ClientID(clientID),
	)

	if clientID == "" {
		return nil, "", fmt.Errorf("client_id is required")
	}

	generated := ""
	if secret == "" {
		var err error
		secret, err = secrets.NewClientSecret()
		if err != nil {
			return nil, "", err
		}
		generated = secret
	} else if len(secret) < 16 {
		return nil, "", fmt.Errorf("secret must be at least 16 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	client, err := s.clients.Create(ctx, repository.ClientInput{
		ClientID:   clientID,
		Name:       name,
		SecretHash: string(hash),
		Enabled:    true,
	})
	if err != nil {
		log.Error("failed to create client", logger.Err(err))
		return nil, "", err
	}

	audit.Log(ctx, "client.created", map[string]any{
		"client_id":          clientID,
		"secret_fingerprint": secrets.Fingerprint(secret),
	})
	log.Info("client created")
	return client, generated, nil
}

func (s *clientService) List(ctx context.Context) ([]repository.Client, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.clients"),
		logger.Op("List"),
	)

	clients, err := s.clients.List(ctx)
	if err != nil {
		log.Error("failed to list clients", logger.Err(err))
		return nil, err
	}

	log.Debug("clients listed", logger.Int("count", len(clients)))
	return clients, nil
}

func (s *clientService) Delete(ctx context.Context, clientID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.clients"),
		logger.Op("Delete"),
		logger.ClientID(clientID),
	)

	if clientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if err := s.clients.Delete(ctx, clientID); err != nil {
		log.Error("failed to delete client", logger.Err(err))
		return err
	}

	audit.Log(ctx, "client.deleted", map[string]any{"client_id": clientID})
	log.Info("client deleted")
	return nil
}
