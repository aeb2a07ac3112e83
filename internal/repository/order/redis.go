package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"dots-marketplace/internal/domain"
)

// updateRetries bounds how often UpdateStatus restarts after the list changed
// under its WATCH.
const updateRetries = 5

type listReader interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

type redisRepo struct {
	client    redis.UniversalClient
	keyPrefix string
	// afterRead runs between reading the list and writing it back in UpdateStatus.
	afterRead func()
}

// NewRedis stores each owner's history as a redis list, head = newest.
func NewRedis(client redis.UniversalClient, keyPrefix string) Repository {
	return &redisRepo{client: client, keyPrefix: keyPrefix}
}

// Append pushes and trims in one MULTI so the list never exceeds MaxOrders.
func (r *redisRepo) Append(ctx context.Context, owner string, o domain.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	key := r.keyPrefix + owner
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, MaxOrders-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append order: %w", err)
	}
	return nil
}

func (r *redisRepo) List(ctx context.Context, owner string) ([]domain.Order, error) {
	return r.list(ctx, r.client, owner)
}

func (r *redisRepo) list(ctx context.Context, c listReader, owner string) ([]domain.Order, error) {
	raw, err := c.LRange(ctx, r.keyPrefix+owner, 0, MaxOrders-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list orders: %w", err)
	}
	out := make([]domain.Order, 0, len(raw))
	for _, item := range raw {
		var o domain.Order
		if err := json.Unmarshal([]byte(item), &o); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *redisRepo) Get(ctx context.Context, owner, orderID string) (*domain.Order, error) {
	_, o, err := r.find(ctx, r.client, owner, orderID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus rewrites the matching list element in place. The read and the
// LSET run under WATCH, so a concurrent Append shifting the indexes aborts the
// write and the update is retried against the new list.
func (r *redisRepo) UpdateStatus(ctx context.Context, owner, orderID string, status domain.OrderStatus) error {
	key := r.keyPrefix + owner
	update := func(tx *redis.Tx) error {
		idx, o, err := r.find(ctx, tx, owner, orderID)
		if err != nil {
			return err
		}
		if r.afterRead != nil {
			r.afterRead()
		}
		o.Status = status
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("encode order: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LSet(ctx, key, int64(idx), data)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < updateRetries; attempt++ {
		err := r.client.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return fmt.Errorf("redis update order: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis update order %s: history kept changing", orderID)
}

func (r *redisRepo) find(ctx context.Context, c listReader, owner, orderID string) (int, *domain.Order, error) {
	orders, err := r.list(ctx, c, owner)
	if err != nil {
		return 0, nil, err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			return i, &orders[i], nil
		}
	}
	return 0, nil, domain.ErrNotFound
}
