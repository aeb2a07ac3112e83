package cart

import (
	"context"
	"sync"

	"dots-marketplace/internal/domain"
)

// Memory keeps snapshots in process. Used for local runs and tests.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, snapshot []byte) error {
	data := make([]byte, len(snapshot))
	copy(data, snapshot)
	m.mu.Lock()
	m.items[key] = data
	m.mu.Unlock()
	return nil
}
