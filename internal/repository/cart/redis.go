package cart

import (
	"context"
	"errors"
	"fmt"

	"dots-marketplace/internal/domain"
	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedis returns a Repository storing snapshots as plain string values.
// Snapshots never expire.
func NewRedis(client redis.Cmdable, keyPrefix string) Repository {
	return &redisRepo{client: client, keyPrefix: keyPrefix}
}

func (r *redisRepo) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return data, nil
}

func (r *redisRepo) Put(ctx context.Context, key string, snapshot []byte) error {
	if err := r.client.Set(ctx, r.keyPrefix+key, snapshot, 0).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}
