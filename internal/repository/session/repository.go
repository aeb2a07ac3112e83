package session

import (
	"context"
	"time"
)

// Session binds an opaque bearer token to a shopper identity.
type Session struct {
	Token     string
	ShopperID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Repository stores sessions by token. Get and Delete return domain.ErrNotFound
// for unknown tokens. Backends may drop expired sessions on their own.
type Repository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
