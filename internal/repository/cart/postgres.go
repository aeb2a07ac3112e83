package cart

import (
	"context"
	"errors"

	"dots-marketplace/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by the cart_snapshots table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT snapshot::text
FROM cart_snapshots
WHERE storage_key = $1
`
	var raw string
	if err := r.pool.QueryRow(ctx, q, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("cart repo: get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return []byte(raw), nil
}

// Put overwrites the whole snapshot; the last writer wins.
func (r *postgresRepo) Put(ctx context.Context, key string, snapshot []byte) error {
	const q = `
INSERT INTO cart_snapshots (storage_key, snapshot, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (storage_key) DO UPDATE
SET snapshot = EXCLUDED.snapshot,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, key, string(snapshot)); err != nil {
		r.logger.Error("cart repo: put failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
