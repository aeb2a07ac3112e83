package order

import (
	"context"
	"sync"

	"dots-marketplace/internal/domain"
)

// Memory is an in-process Repository.
type Memory struct {
	mu      sync.RWMutex
	byOwner map[string][]domain.Order
}

func NewMemory() *Memory {
	return &Memory{byOwner: make(map[string][]domain.Order)}
}

func (m *Memory) Append(_ context.Context, owner string, o domain.Order) error {
	o.Lines = domain.CloneLines(o.Lines)
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append([]domain.Order{o}, m.byOwner[owner]...)
	if len(history) > MaxOrders {
		history = history[:MaxOrders]
	}
	m.byOwner[owner] = history
	return nil
}

func (m *Memory) List(_ context.Context, owner string) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.byOwner[owner]
	out := make([]domain.Order, len(history))
	for i, o := range history {
		o.Lines = domain.CloneLines(o.Lines)
		out[i] = o
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, owner, orderID string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.byOwner[owner] {
		if o.OrderID == orderID {
			o.Lines = domain.CloneLines(o.Lines)
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) UpdateStatus(_ context.Context, owner, orderID string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.byOwner[owner]
	for i := range history {
		if history[i].OrderID == orderID {
			history[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}
