package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// ─── ClientRepository ───

type clientRepo struct{ pool *pgxpool.Pool }

func (r *clientRepo) Create(ctx context.Context, input repository.ClientInput) (*repository.Client, error) {
	const query = `
		INSERT INTO oauth_client (client_id, name, secret_hash, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	c := &repository.Client{
		ClientID:   input.ClientID,
		Name:       input.Name,
		SecretHash: input.SecretHash,
		Enabled:    input.Enabled,
	}
	err := r.pool.QueryRow(ctx, query, input.ClientID, input.Name, input.SecretHash, input.Enabled).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: create client: %w", err)
	}
	return c, nil
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	const query = `
		SELECT id, client_id, name, secret_hash, enabled, created_at, updated_at
		FROM oauth_client WHERE client_id = $1
	`
	var c repository.Client
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&c.ID, &c.ClientID, &c.Name, &c.SecretHash, &c.Enabled, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get client: %w", err)
	}
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context) ([]repository.Client, error) {
	const query = `
		SELECT id, client_id, name, secret_hash, enabled, created_at, updated_at
		FROM oauth_client ORDER BY client_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pg: list clients: %w", err)
	}
	defer rows.Close()

	var clients []repository.Client
	for rows.Next() {
		var c repository.Client
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Name, &c.SecretHash, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientRepo) Delete(ctx context.Context, clientID string) error {
	const query = `DELETE FROM oauth_client WHERE client_id = $1`
	tag, err := r.pool.Exec(ctx, query, clientID)
	if err != nil {
		return fmt.Errorf("pg: delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
