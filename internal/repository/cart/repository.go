package cart

import "context"

// Repository stores one serialized cart snapshot per key. Get returns
// domain.ErrNotFound when the key has never been written.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, snapshot []byte) error
}
