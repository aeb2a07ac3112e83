package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dots-marketplace/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by the orders table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Append(ctx context.Context, owner string, o domain.Order) error {
	snapshot, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO orders (order_id, owner_key, status, snapshot, created_at)
VALUES ($1, $2, $3, $4::jsonb, $5)
`, o.OrderID, owner, string(o.Status), string(snapshot), o.CreatedAt); err != nil {
		r.logger.Error("order repo: insert failed", zap.String("order_id", o.OrderID), zap.Error(err))
		return err
	}

	cmd, err := tx.Exec(ctx, `
DELETE FROM orders
WHERE owner_key = $1
  AND seq NOT IN (
    SELECT seq FROM orders
    WHERE owner_key = $1
    ORDER BY seq DESC
    LIMIT $2
  )
`, owner, MaxOrders)
	if err != nil {
		r.logger.Error("order repo: trim failed", zap.String("owner", owner), zap.Error(err))
		return err
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Debug("order repo: evicted old orders", zap.String("owner", owner), zap.Int64("count", n))
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) List(ctx context.Context, owner string) ([]domain.Order, error) {
	const q = `
SELECT snapshot::text, status
FROM orders
WHERE owner_key = $1
ORDER BY seq DESC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, owner, MaxOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Get(ctx context.Context, owner, orderID string) (*domain.Order, error) {
	const q = `
SELECT snapshot::text, status
FROM orders
WHERE owner_key = $1 AND order_id = $2
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, owner, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, owner, orderID string, status domain.OrderStatus) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $3
WHERE owner_key = $1 AND order_id = $2
`, owner, orderID, string(status))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanOrder decodes the snapshot; the status column is authoritative.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var raw, status string
	if err := row.Scan(&raw, &status); err != nil {
		return nil, err
	}
	var o domain.Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
