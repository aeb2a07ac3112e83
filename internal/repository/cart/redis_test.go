package cart

import (
	"context"
	"testing"

	"dots-marketplace/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:"), mr
}

func TestRedis_GetMissing(t *testing.T) {
	repo, _ := newRedisRepo(t)
	_, err := repo.Get(context.Background(), "dots_cart")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedis_PutOverwrites(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "dots_cart", []byte(`{"lines":[]}`)))
	require.NoError(t, repo.Put(ctx, "dots_cart", []byte(`{"lines":[{"productId":"p1"}]}`)))

	got, err := repo.Get(ctx, "dots_cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lines":[{"productId":"p1"}]}`, string(got))

	raw, err := mr.Get("test:dots_cart")
	require.NoError(t, err)
	assert.Equal(t, string(got), raw)
}

func TestRedis_ConnectionError(t *testing.T) {
	repo, mr := newRedisRepo(t)
	mr.Close()

	_, err := repo.Get(context.Background(), "dots_cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Error(t, repo.Put(context.Background(), "dots_cart", []byte("{}")))
}

func TestMemory_CopiesData(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	data := []byte(`{"lines":[]}`)
	require.NoError(t, repo.Put(ctx, "k", data))
	data[0] = 'x'

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, string(got))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
