// Package notify carries user-facing success and failure events out of the cart and
// checkout flows. Delivery is best effort; a sink never fails the operation that
// raised the event.
package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Notification is a single event addressed to a shopper.
type Notification struct {
	Kind        Kind   `json:"kind"`
	Event       string `json:"event"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Shopper     string `json:"shopper,omitempty"`
}

type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// LogSink writes notifications to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(_ context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("event", n.Event),
		zap.String("title", n.Title),
		zap.String("description", n.Description),
		zap.String("shopper", n.Shopper),
	}
	switch n.Kind {
	case KindError:
		s.logger.Error("notification", fields...)
	case KindWarning:
		s.logger.Warn("notification", fields...)
	default:
		s.logger.Info("notification", fields...)
	}
}

// Broadcaster fans a notification out to every registered sink.
type Broadcaster struct {
	mu    sync.RWMutex
	sinks []Sink
}

func NewBroadcaster(sinks ...Sink) *Broadcaster {
	return &Broadcaster{sinks: sinks}
}

// Subscribe adds a sink. Sinks added while a Notify is running only see later events.
func (b *Broadcaster) Subscribe(s Sink) {
	b.mu.Lock()
	b.sinks = append(b.sinks, s)
	b.mu.Unlock()
}

func (b *Broadcaster) Notify(ctx context.Context, n Notification) {
	b.mu.RLock()
	sinks := append([]Sink(nil), b.sinks...)
	b.mu.RUnlock()

	for _, s := range sinks {
		s.Notify(ctx, n)
	}
}

// Recorder keeps notifications in memory, mainly for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.events = append(r.events, n)
	r.mu.Unlock()
}

func (r *Recorder) Events() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.events...)
}

const (
	EventProductAdded   = "productAddedToCart"
	EventProductRemoved = "productRemovedFromCart"
	EventOrderPlaced    = "orderPlaced"
	EventCheckoutFailed = "checkoutFailed"
	EventWarning        = "warning"
)

func ProductAddedToCart(shopper, productName string) Notification {
	return Notification{
		Kind:        KindSuccess,
		Event:       EventProductAdded,
		Title:       "Added to cart",
		Description: fmt.Sprintf("%s has been added to your cart.", productName),
		Shopper:     shopper,
	}
}

func ProductRemovedFromCart(shopper string) Notification {
	return Notification{
		Kind:        KindSuccess,
		Event:       EventProductRemoved,
		Title:       "Removed from cart",
		Description: "Item has been removed from your cart.",
		Shopper:     shopper,
	}
}

func OrderPlaced(shopper, orderID string) Notification {
	return Notification{
		Kind:        KindSuccess,
		Event:       EventOrderPlaced,
		Title:       "Order placed",
		Description: fmt.Sprintf("Your order %s has been placed successfully.", orderID),
		Shopper:     shopper,
	}
}

func CheckoutFailed(shopper string) Notification {
	return Notification{
		Kind:        KindError,
		Event:       EventCheckoutFailed,
		Title:       "Payment failed",
		Description: "Failed to process checkout. Please try again.",
		Shopper:     shopper,
	}
}

func Warning(shopper, description string) Notification {
	return Notification{
		Kind:        KindWarning,
		Event:       EventWarning,
		Title:       "Warning",
		Description: description,
		Shopper:     shopper,
	}
}
