package order

import (
	"context"

	"dots-marketplace/internal/domain"
)

// MaxOrders is the most orders kept per shopper. Appending beyond it evicts the oldest.
const MaxOrders = 50

// Repository is an append-only, newest-first order history per owner key.
type Repository interface {
	Append(ctx context.Context, owner string, order domain.Order) error
	List(ctx context.Context, owner string) ([]domain.Order, error)
	Get(ctx context.Context, owner, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, owner, orderID string, status domain.OrderStatus) error
}
