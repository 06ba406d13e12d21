package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// ─── EventRepository ───

type eventRepo struct{ pool *pgxpool.Pool }

func (r *eventRepo) Create(ctx context.Context, ev *repository.ExchangeEvent) error {
	const query = `
		INSERT INTO exchange_event (
			id, client_id, policy_id, subject, subject_token_type, subject_token_id,
			requested_audience, granted_audience, requested_scopes, granted_scopes,
			actor_subject, success, error, issued_token_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		ev.ID, ev.ClientID, ev.PolicyID, ev.Subject, ev.SubjectTokenType, ev.SubjectTokenID,
		ev.RequestedAudience, ev.GrantedAudience, ev.RequestedScopes, ev.GrantedScopes,
		ev.ActorSubject, ev.Success, nullIfEmpty(ev.Error), ev.IssuedTokenID, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("pg: create event: %w", err)
	}
	return nil
}

func (r *eventRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]repository.ExchangeEvent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exchange_event WHERE client_id = $1`, clientID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pg: count events: %w", err)
	}

	const query = `
		SELECT id, client_id, policy_id, subject, subject_token_type, subject_token_id,
			requested_audience, granted_audience, requested_scopes, granted_scopes,
			actor_subject, success, COALESCE(error, ''), issued_token_id, created_at
		FROM exchange_event
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pg: list events: %w", err)
	}
	defer rows.Close()

	var events []repository.ExchangeEvent
	for rows.Next() {
		var ev repository.ExchangeEvent
		if err := rows.Scan(
			&ev.ID, &ev.ClientID, &ev.PolicyID, &ev.Subject, &ev.SubjectTokenType, &ev.SubjectTokenID,
			&ev.RequestedAudience, &ev.GrantedAudience, &ev.RequestedScopes, &ev.GrantedScopes,
			&ev.ActorSubject, &ev.Success, &ev.Error, &ev.IssuedTokenID, &ev.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	return events, total, rows.Err()
}
