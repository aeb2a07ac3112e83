package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/notify"
)

// DefaultLeadTime is the delivery estimate added to the order time.
const DefaultLeadTime = 7 * 24 * time.Hour

// CheckoutError means no order was recorded and the cart was left as it was.
type CheckoutError struct {
	Err error
}

func (e *CheckoutError) Error() string {
	if e.Err == nil {
		return "failed to process checkout"
	}
	return "failed to process checkout: " + e.Err.Error()
}

func (e *CheckoutError) Unwrap() error { return e.Err }

type history interface {
	Append(ctx context.Context, shopper string, o domain.Order) error
}

type cartClearer interface {
	Clear(ctx context.Context, shopper string) (domain.Cart, error)
}

type Options struct {
	LeadTime time.Duration
	Now      func() time.Time
	NewID    func() string
}

// Processor turns a priced cart into an order. It is the only creator of orders.
type Processor struct {
	history  history
	carts    cartClearer
	notifier notify.Sink
	logger   *zap.Logger
	leadTime time.Duration
	now      func() time.Time
	newID    func() string
}

func New(history history, carts cartClearer, notifier notify.Sink, logger *zap.Logger, opts Options) *Processor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		history:  history,
		carts:    carts,
		notifier: notifier,
		logger:   logger,
		leadTime: opts.LeadTime,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if p.leadTime <= 0 {
		p.leadTime = DefaultLeadTime
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = NewOrderID
	}
	return p
}

// NewOrderID returns "ORD-" followed by a time-ordered UUID.
func NewOrderID() string {
	return "ORD-" + uuid.Must(uuid.NewV7()).String()
}

// Checkout records an order built from cart exactly as priced, then empties the
// cart. Totals are copied, never recomputed. If the order cannot be recorded the
// cart is not touched and a *CheckoutError is returned.
func (p *Processor) Checkout(ctx context.Context, shopper string, cart domain.Cart, addr domain.ShippingAddress, paymentMethod string) (domain.Order, error) {
	createdAt := p.now().UTC()
	order := domain.Order{
		OrderID:           p.newID(),
		Lines:             domain.CloneLines(cart.Lines),
		ShippingAddress:   addr,
		PaymentMethod:     strings.TrimSpace(paymentMethod),
		Subtotal:          cart.Subtotal,
		Shipping:          cart.Shipping,
		Tax:               cart.Tax,
		Total:             cart.Total,
		Status:            domain.OrderStatusPending,
		CreatedAt:         createdAt,
		EstimatedDelivery: createdAt.Add(p.leadTime),
	}

	if err := p.history.Append(ctx, shopper, order); err != nil {
		p.logger.Error("checkout failed", zap.String("shopper", shopper), zap.Error(err))
		p.notifier.Notify(ctx, notify.CheckoutFailed(shopper))
		return domain.Order{}, &CheckoutError{Err: err}
	}

	if _, err := p.carts.Clear(ctx, shopper); err != nil {
		// The order is recorded; a stale cart is left for the shopper to clear.
		p.logger.Warn("order placed but cart not cleared",
			zap.String("order_id", order.OrderID),
			zap.String("shopper", shopper),
			zap.Error(err),
		)
		p.notifier.Notify(ctx, notify.Warning(shopper, "Your order was placed but your cart could not be emptied."))
	}

	p.logger.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.String("shopper", shopper),
		zap.Int64("total", order.Total),
		zap.Int("lines", len(order.Lines)),
	)
	p.notifier.Notify(ctx, notify.OrderPlaced(shopper, order.OrderID))
	return order, nil
}

// IsCheckoutError reports whether err came from a failed checkout.
func IsCheckoutError(err error) bool {
	var ce *CheckoutError
	return errors.As(err, &ce)
}
