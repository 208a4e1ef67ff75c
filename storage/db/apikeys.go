package db

import (
	"context"
	"database/sql"
	"time"
)

type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	IsActive   bool
	LastUsedAt sql.NullTime
	CreatedAt  time.Time
}

type CreateAPIKeyParams struct {
	ID      string
	Name    string
	KeyHash string
}

func (q *Queries) CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (APIKey, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, name, key_hash)
		VALUES (?, ?, ?)
		RETURNING id, name, key_hash, is_active, last_used_at, created_at`,
		arg.ID, arg.Name, arg.KeyHash)
	var k APIKey
	err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.IsActive, &k.LastUsedAt, &k.CreatedAt)
	return k, err
}

func (q *Queries) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, key_hash, is_active, last_used_at, created_at
		FROM api_keys WHERE key_hash = ?`, keyHash)
	var k APIKey
	err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.IsActive, &k.LastUsedAt, &k.CreatedAt)
	return k, err
}

func (q *Queries) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (q *Queries) DeactivateAPIKey(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE api_keys SET is_active = 0 WHERE id = ?`, id)
	return err
}
