package order

import (
	"context"
	"os"
	"testing"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_AppendCapAndStatus(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE orders RESTART IDENTITY`)
	require.NoError(t, err)

	repo := NewPostgres(pool, nil)
	for i := 1; i <= MaxOrders+1; i++ {
		require.NoError(t, repo.Append(ctx, "shopper", sampleOrder(i)))
	}

	list, err := repo.List(ctx, "shopper")
	require.NoError(t, err)
	require.Len(t, list, MaxOrders)
	assert.Equal(t, "ORD-051", list[0].OrderID)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE owner_key = 'shopper'`).Scan(&count))
	assert.Equal(t, MaxOrders, count)

	require.NoError(t, repo.UpdateStatus(ctx, "shopper", "ORD-051", domain.OrderStatusConfirmed))
	got, err := repo.Get(ctx, "shopper", "ORD-051")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)

	_, err = repo.Get(ctx, "shopper", "ORD-001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
