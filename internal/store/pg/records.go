package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
)

// ─── RecordRepository ───

type recordRepo struct{ pool *pgxpool.Pool }

const recordColumns = `id, kind, payload, grant_id, user_code, uid, expires_at, consumed_at, created_at, updated_at`

func (r *recordRepo) Upsert(ctx context.Context, input repository.UpsertRecordInput) error {
	const query = `
		INSERT INTO token_record (id, kind, payload, grant_id, user_code, uid, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id, kind) DO UPDATE SET
			payload = $3, grant_id = $4, user_code = $5, uid = $6, expires_at = $7,
			consumed_at = NULL, updated_at = NOW()
	`
	payload := input.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	_, err := r.pool.Exec(ctx, query,
		input.ID, input.Kind, payload, input.GrantID, input.UserCode, input.UID, input.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("pg: upsert record: %w", err)
	}
	return nil
}

func (r *recordRepo) Get(ctx context.Context, kind, id string) (*repository.TokenRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM token_record WHERE id = $1 AND kind = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, kind))
}

func (r *recordRepo) GetByUserCode(ctx context.Context, kind, userCode string) (*repository.TokenRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM token_record WHERE user_code = $1 AND kind = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, userCode, kind))
}

func (r *recordRepo) GetByUID(ctx context.Context, kind, uid string) (*repository.TokenRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM token_record WHERE uid = $1 AND kind = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, uid, kind))
}

func (r *recordRepo) Delete(ctx context.Context, kind, id string) error {
	const query = `DELETE FROM token_record WHERE id = $1 AND kind = $2`
	_, err := r.pool.Exec(ctx, query, id, kind)
	if err != nil {
		return fmt.Errorf("pg: delete record: %w", err)
	}
	return nil
}

func (r *recordRepo) Consume(ctx context.Context, kind, id string) error {
	// COALESCE mantiene el timestamp original en llamadas repetidas.
	const query = `
		UPDATE token_record
		SET consumed_at = COALESCE(consumed_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND kind = $2
	`
	_, err := r.pool.Exec(ctx, query, id, kind)
	if err != nil {
		return fmt.Errorf("pg: consume record: %w", err)
	}
	return nil
}

func (r *recordRepo) DeleteByGrantKinds(ctx context.Context, grantID string, kinds []string) (int, error) {
	const query = `DELETE FROM token_record WHERE grant_id = $1 AND kind = ANY($2)`
	tag, err := r.pool.Exec(ctx, query, grantID, kinds)
	if err != nil {
		return 0, fmt.Errorf("pg: delete by grant kinds: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *recordRepo) DeleteByGrant(ctx context.Context, grantID string) (int, error) {
	const query = `DELETE FROM token_record WHERE grant_id = $1`
	tag, err := r.pool.Exec(ctx, query, grantID)
	if err != nil {
		return 0, fmt.Errorf("pg: delete by grant: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *recordRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	const query = `DELETE FROM token_record WHERE expires_at IS NOT NULL AND expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("pg: delete expired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *recordRepo) scanOne(row pgx.Row) (*repository.TokenRecord, error) {
	var rec repository.TokenRecord
	err := row.Scan(
		&rec.ID, &rec.Kind, &rec.Payload, &rec.GrantID, &rec.UserCode, &rec.UID,
		&rec.ExpiresAt, &rec.ConsumedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: scan record: %w", err)
	}
	return &rec, nil
}
