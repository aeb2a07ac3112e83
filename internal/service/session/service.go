// Package session issues anonymous shopper sessions. A session token resolves to
// the shopper identity that scopes a cart and an order history.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dots-marketplace/internal/domain"
	sessionrepo "dots-marketplace/internal/repository/session"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultTTL = 30 * 24 * time.Hour

type Service struct {
	repo sessionrepo.Repository
	ttl  time.Duration
	now  func() time.Time
}

func New(repo sessionrepo.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, ttl: ttl, now: time.Now}
}

// Issue creates a new shopper identity and a bearer token for it.
func (s *Service) Issue(ctx context.Context) (sessionrepo.Session, error) {
	token, err := randomToken()
	if err != nil {
		return sessionrepo.Session{}, err
	}
	now := s.now().UTC()
	sess := sessionrepo.Session{
		Token:     token,
		ShopperID: uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return sessionrepo.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Resolve returns the shopper behind token. Unknown and expired tokens yield
// ErrInvalidToken; expired ones are removed.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	sess, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if sess.Expired(s.now()) {
		_ = s.repo.Delete(ctx, token)
		return "", ErrInvalidToken
	}
	return sess.ShopperID, nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
