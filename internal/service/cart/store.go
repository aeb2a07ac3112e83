package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/pricing"
	cartrepo "dots-marketplace/internal/repository/cart"
)

// StorageKey is the snapshot key for the default shopper.
const StorageKey = "dots_cart"

// KeyFor scopes the snapshot key to a shopper. An empty shopper uses StorageKey.
func KeyFor(shopper string) string {
	shopper = strings.TrimSpace(shopper)
	if shopper == "" {
		return StorageKey
	}
	return StorageKey + ":" + shopper
}

// Store loads and saves cart snapshots. Loads never fail: anything that cannot be
// read back as a valid cart yields an empty one.
type Store struct {
	repo   cartrepo.Repository
	calc   *pricing.Calculator
	logger *zap.Logger
}

func NewStore(repo cartrepo.Repository, calc *pricing.Calculator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, calc: calc, logger: logger}
}

// snapshot is the persisted record. Totals are written for readers of the raw
// record but ignored on load.
type snapshot struct {
	Lines []domain.CartLine `json:"lines"`
}

func (s *Store) Load(ctx context.Context, shopper string) domain.Cart {
	key := KeyFor(shopper)
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("cart load failed, starting empty", zap.String("key", key), zap.Error(err))
		}
		return s.calc.Price(nil)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Warn("cart snapshot malformed, starting empty", zap.String("key", key), zap.Error(err))
		return s.calc.Price(nil)
	}
	if err := validateLines(snap.Lines); err != nil {
		s.logger.Warn("cart snapshot invalid, starting empty", zap.String("key", key), zap.Error(err))
		return s.calc.Price(nil)
	}
	return s.calc.Price(snap.Lines)
}

// Save writes the cart with freshly derived totals. Errors are logged and returned.
func (s *Store) Save(ctx context.Context, shopper string, cart domain.Cart) error {
	key := KeyFor(shopper)
	priced := s.calc.Price(cart.Lines)
	raw, err := json.Marshal(priced)
	if err != nil {
		s.logger.Error("cart snapshot encode failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.repo.Put(ctx, key, raw); err != nil {
		s.logger.Error("cart save failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func validateLines(lines []domain.CartLine) error {
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if err := validateLine(l); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		if l.Quantity <= 0 || l.Quantity > domain.MaxLineQuantity {
			return fmt.Errorf("line %d: %w", i, domain.ErrInvalidQuantity)
		}
		key := l.IdentityKey()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("line %d: duplicate selection for product %s", i, l.ProductID)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateLine(l domain.CartLine) error {
	if strings.TrimSpace(l.ProductID) == "" {
		return fmt.Errorf("%w: productId required", domain.ErrInvalidLine)
	}
	if l.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidLine)
	}
	return nil
}
