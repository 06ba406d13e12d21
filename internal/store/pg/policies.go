package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// ─── PolicyRepository ───

type policyRepo struct{ pool *pgxpool.Pool }

const policyColumns = `id, client_id, priority, subject, subject_token_types, audiences, scopes, actor_token_required, enabled, created_at, updated_at`

func (r *policyRepo) Create(ctx context.Context, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error) {
	const query = `
		INSERT INTO exchange_policy (client_id, priority, subject, subject_token_types, audiences, scopes, actor_token_required, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	p := policyFromInput(input)
	err := r.pool.QueryRow(ctx, query,
		input.ClientID, input.Priority, input.Subject, input.SubjectTokenTypes,
		input.Audiences, input.Scopes, input.ActorTokenRequired, input.Enabled,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("pg: create policy: %w", err)
	}
	return p, nil
}

func (r *policyRepo) GetByID(ctx context.Context, id string) (*repository.ExchangePolicy, error) {
	const query = `SELECT ` + policyColumns + ` FROM exchange_policy WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *policyRepo) Update(ctx context.Context, id string, input repository.ExchangePolicyInput) (*repository.ExchangePolicy, error) {
	const query = `
		UPDATE exchange_policy
		SET client_id = $2, priority = $3, subject = $4, subject_token_types = $5,
			audiences = $6, scopes = $7, actor_token_required = $8, enabled = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING id, created_at, updated_at
	`
	p := policyFromInput(input)
	err := r.pool.QueryRow(ctx, query,
		id, input.ClientID, input.Priority, input.Subject, input.SubjectTokenTypes,
		input.Audiences, input.Scopes, input.ActorTokenRequired, input.Enabled,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: update policy: %w", err)
	}
	return p, nil
}

func (r *policyRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM exchange_policy WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pg: delete policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *policyRepo) ListByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	const query = `
		SELECT ` + policyColumns + `
		FROM exchange_policy
		WHERE client_id = $1
		ORDER BY priority DESC, created_at ASC
	`
	return r.list(ctx, query, clientID)
}

func (r *policyRepo) ListEnabledByClient(ctx context.Context, clientID string) ([]repository.ExchangePolicy, error) {
	// El orden es el contrato de evaluación del matcher: no cambiar.
	const query = `
		SELECT ` + policyColumns + `
		FROM exchange_policy
		WHERE client_id = $1 AND enabled = true
		ORDER BY priority DESC, created_at ASC
	`
	return r.list(ctx, query, clientID)
}

func (r *policyRepo) list(ctx context.Context, query, clientID string) ([]repository.ExchangePolicy, error) {
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("pg: list policies: %w", err)
	}
	defer rows.Close()

	var policies []repository.ExchangePolicy
	for rows.Next() {
		var p repository.ExchangePolicy
		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.Priority, &p.Subject, &p.SubjectTokenTypes,
			&p.Audiences, &p.Scopes, &p.ActorTokenRequired, &p.Enabled,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (r *policyRepo) scanOne(row pgx.Row) (*repository.ExchangePolicy, error) {
	var p repository.ExchangePolicy
	err := row.Scan(
		&p.ID, &p.ClientID, &p.Priority, &p.Subject, &p.SubjectTokenTypes,
		&p.Audiences, &p.Scopes, &p.ActorTokenRequired, &p.Enabled,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: scan policy: %w", err)
	}
	return &p, nil
}

func policyFromInput(input repository.ExchangePolicyInput) *repository.ExchangePolicy {
	return &repository.ExchangePolicy{
		ClientID:           input.ClientID,
		Priority:           input.Priority,
		Subject:            input.Subject,
		SubjectTokenTypes:  input.SubjectTokenTypes,
		Audiences:          input.Audiences,
		Scopes:             input.Scopes,
		ActorTokenRequired: input.ActorTokenRequired,
		Enabled:            input.Enabled,
	}
}
