package cart

import (
	"context"
	"fmt"
	"strings"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/notify"
	"dots-marketplace/internal/pricing"
)

// Operation names carried by OperationError.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
)

var opMessages = map[string]string{
	OpAdd:    "failed to add item to cart",
	OpUpdate: "failed to update cart item",
	OpRemove: "failed to remove item from cart",
	OpClear:  "failed to clear cart",
}

// OperationError reports that a cart mutation was computed but could not be
// persisted. The cart returned alongside it is still the correct result.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	msg, ok := opMessages[e.Op]
	if !ok {
		msg = "cart operation failed"
	}
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Message is the shopper-facing text without the underlying cause.
func (e *OperationError) Message() string {
	if msg, ok := opMessages[e.Op]; ok {
		return msg
	}
	return "cart operation failed"
}

type store interface {
	Load(ctx context.Context, shopper string) domain.Cart
	Save(ctx context.Context, shopper string, cart domain.Cart) error
}

// Service is the only mutator of cart state. Each call loads the snapshot,
// applies one change, reprices and saves it. Concurrent callers on the same
// shopper get last-write-wins.
type Service struct {
	store    store
	calc     *pricing.Calculator
	notifier notify.Sink
}

func New(store store, calc *pricing.Calculator, notifier notify.Sink) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, calc: calc, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, shopper string) domain.Cart {
	return s.store.Load(ctx, shopper)
}

// AddItem merges quantity into the line with the same product and customization,
// or appends a new line.
func (s *Service) AddItem(ctx context.Context, shopper string, line domain.CartLine, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	if quantity > domain.MaxLineQuantity {
		return domain.Cart{}, quantityLimitError(quantity)
	}
	line.ProductID = strings.TrimSpace(line.ProductID)
	if err := validateLine(line); err != nil {
		return domain.Cart{}, err
	}
	line.Customization = line.Customization.Clone()

	current := s.store.Load(ctx, shopper)
	lines := current.Lines
	key := line.IdentityKey()
	merged := false
	for i := range lines {
		if lines[i].IdentityKey() == key {
			if total := lines[i].Quantity + quantity; total > domain.MaxLineQuantity {
				return current, quantityLimitError(total)
			}
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		line.Quantity = quantity
		lines = append(lines, line)
	}

	cart, err := s.persist(ctx, shopper, OpAdd, lines)
	if err == nil {
		s.notifier.Notify(ctx, notify.ProductAddedToCart(shopper, line.ProductName))
	}
	return cart, err
}

// UpdateItem sets the quantity of a line. A quantity of zero or less removes it.
// An unknown line leaves the cart unchanged.
func (s *Service) UpdateItem(ctx context.Context, shopper, productID string, quantity int, c domain.Customization) (domain.Cart, error) {
	if quantity > domain.MaxLineQuantity {
		return domain.Cart{}, quantityLimitError(quantity)
	}
	current := s.store.Load(ctx, shopper)
	lines := current.Lines
	if i := indexOf(lines, domain.LineKey(strings.TrimSpace(productID), c)); i >= 0 {
		if quantity <= 0 {
			lines = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = quantity
		}
	}
	return s.persist(ctx, shopper, OpUpdate, lines)
}

func (s *Service) RemoveItem(ctx context.Context, shopper, productID string, c domain.Customization) (domain.Cart, error) {
	current := s.store.Load(ctx, shopper)
	key := domain.LineKey(strings.TrimSpace(productID), c)
	kept := current.Lines[:0]
	for _, l := range current.Lines {
		if l.IdentityKey() != key {
			kept = append(kept, l)
		}
	}

	cart, err := s.persist(ctx, shopper, OpRemove, kept)
	if err == nil {
		s.notifier.Notify(ctx, notify.ProductRemovedFromCart(shopper))
	}
	return cart, err
}

func (s *Service) Clear(ctx context.Context, shopper string) (domain.Cart, error) {
	return s.persist(ctx, shopper, OpClear, nil)
}

// Quote prices lines for a destination without touching stored state.
func (s *Service) Quote(lines []domain.CartLine, addr *domain.ShippingAddress) pricing.Totals {
	return s.calc.Totals(lines, addr)
}

func (s *Service) persist(ctx context.Context, shopper, op string, lines []domain.CartLine) (domain.Cart, error) {
	cart := s.calc.Price(lines)
	if err := s.store.Save(ctx, shopper, cart); err != nil {
		return cart, &OperationError{Op: op, Err: err}
	}
	return cart, nil
}

func quantityLimitError(quantity int) error {
	return fmt.Errorf("%w: %d exceeds the limit of %d per line", domain.ErrInvalidQuantity, quantity, domain.MaxLineQuantity)
}

func indexOf(lines []domain.CartLine, key string) int {
	for i, l := range lines {
		if l.IdentityKey() == key {
			return i
		}
	}
	return -1
}
