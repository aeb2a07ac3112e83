package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
	orderrepo "dots-marketplace/internal/repository/order"
)

// HistoryKey is the owner key of the default shopper's history.
const HistoryKey = "dots_order_history"

// KeyFor scopes the history to a shopper. An empty shopper uses HistoryKey.
func KeyFor(shopper string) string {
	shopper = strings.TrimSpace(shopper)
	if shopper == "" {
		return HistoryKey
	}
	return HistoryKey + ":" + shopper
}

type Service struct {
	repo   orderrepo.Repository
	logger *zap.Logger
}

func New(repo orderrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Append stores a new order at the head of the shopper's history.
func (s *Service) Append(ctx context.Context, shopper string, o domain.Order) error {
	if err := s.repo.Append(ctx, KeyFor(shopper), o); err != nil {
		return fmt.Errorf("append order %s: %w", o.OrderID, err)
	}
	return nil
}

// All returns the history newest first. Read failures yield an empty history.
func (s *Service) All(ctx context.Context, shopper string) []domain.Order {
	orders, err := s.repo.List(ctx, KeyFor(shopper))
	if err != nil {
		s.logger.Warn("order history unreadable, returning empty", zap.String("shopper", shopper), zap.Error(err))
		return []domain.Order{}
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders
}

// Get returns domain.ErrNotFound for unknown ids and for unreadable histories.
func (s *Service) Get(ctx context.Context, shopper, orderID string) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrNotFound
	}
	o, err := s.repo.Get(ctx, KeyFor(shopper), orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		}
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// AdvanceStatus applies a fulfillment event. Only the transitions allowed by
// OrderStatus.CanTransitionTo are accepted.
func (s *Service) AdvanceStatus(ctx context.Context, shopper, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, next)
	}
	o, err := s.repo.Get(ctx, KeyFor(shopper), orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, KeyFor(shopper), orderID, next); err != nil {
		return nil, fmt.Errorf("update order %s status: %w", orderID, err)
	}
	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
	)
	o.Status = next
	return o, nil
}
