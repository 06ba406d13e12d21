// Package admin provee servicios para operaciones administrativas HTTP.
package admin

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/tokenbridge/internal/audit"
	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/exchange"
	"github.com/dropDatabas3/tokenbridge/internal/observability/logger"
	"github.com/dropDatabas3/tokenbridge/internal/validation"
)

// PolicyService define las operaciones de exchange policies del admin API.
type PolicyService interface {
	Create(ctx context.Context, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error)
	Get(ctx context.Context, id string) (*repository.ExchangePolicy, error)
	Update(ctx context.Context, id string, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error)
	Delete(ctx context.Context, id string) error
	ListByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error)
}

// policyService implementa PolicyService sobre el repositorio, invalidando
// el cache del matcher en cada mutación.
type policyService struct {
	policies repository.PolicyRepository
	matcher  *exchange.Matcher
}

// NewPolicyService crea el servicio de policies.
func NewPolicyService(policies repository.PolicyRepository, matcher *exchange.Matcher) PolicyService {
	return &policyService{policies: policies, matcher: matcher}
}

func (s *policyService) Create(ctx context.Context, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.policies"),
		logger.Op("Create"),
		logger.ClientID(input.ClientID),
	)

	if err := validation.PolicyInput(input); err != nil {
		return nil, err
	}

	policy, err := s.policies.Create(ctx, input)
	if err != nil {
		log.Error("failed to create policy", logger.Err(err))
		return nil, err
	}
	s.invalidate(input.ClientID)

	audit.Log(ctx, "policy.created", map[string]any{
		"policy_id": policy.ID,
		"client_id": policy.ClientID,
		"priority":  policy.Priority,
	})
	log.Info("policy created", logger.PolicyID(policy.ID))
	return policy, nil
}

func (s *policyService) Get(ctx context.Context, id string) (*repository.ExchangePolicy, error) {
	if id == "" {
		return nil, fmt.Errorf("policy id is required")
	}
	return s.policies.GetByID(ctx, id)
}

func (s *policyService) Update(ctx context.Context, id string, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.policies"),
		logger.Op("Update"),
		logger.PolicyID(id),
	)

	if id == "" {
		return nil, fmt.Errorf("policy id is required")
	}
	if err := validation.PolicyInput(input); err != nil {
		return nil, err
	}

	policy, err := s.policies.Update(ctx, id, input)
	if err != nil {
		log.Error("failed to update policy", logger.Err(err))
		return nil, err
	}
	s.invalidate(policy.ClientID)

	audit.Log(ctx, "policy.updated", map[string]any{
		"policy_id": policy.ID,
		"client_id": policy.ClientID,
	})
	log.Info("policy updated")
	return policy, nil
}

func (s *policyService) Delete(ctx context.Context, id string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.policies"),
		logger.Op("Delete"),
		logger.PolicyID(id),
	)

	if id == "" {
		return fmt.Errorf("policy id is required")
	}

	// Resolver el cliente antes de borrar para poder invalidar su cache.
	policy, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, id); err != nil {
		log.Error("failed to delete policy", logger.Err(err))
		return err
	}
	s.invalidate(policy.ClientID)

	audit.Log(ctx, "policy.deleted", map[string]any{
		"policy_id": id,
		"client_id": policy.ClientID,
	})
	log.Info("policy deleted")
	return nil
}

func (s *policyService) ListByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}
	return s.policies.ListByClient(ctx, clientID)
}

func (s *policyService) invalidate(clientID string) {
	if s.matcher != nil {
		s.matcher.Invalidate(clientID)
	}
}
