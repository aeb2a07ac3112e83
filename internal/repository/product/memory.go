package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dots-marketplace/internal/domain"
)

// Memory is an in-process catalog keyed by product key.
type Memory struct {
	mu    sync.RWMutex
	byKey map[string]domain.Product
}

func NewMemory() *Memory {
	return &Memory{byKey: make(map[string]domain.Product)}
}

func (m *Memory) List(_ context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	m.mu.RLock()
	out := make([]domain.Product, 0, len(m.byKey))
	for _, p := range m.byKey {
		if category == "" || strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) Search(_ context.Context, f domain.ProductFilter) (domain.ProductPage, error) {
	m.mu.RLock()
	matched := make([]domain.Product, 0, len(m.byKey))
	for _, p := range m.byKey {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(matched)

	artists := map[string]int{}
	bands := make([]int, len(domain.PriceBands))
	for _, p := range matched {
		if p.ArtistName != "" {
			artists[p.ArtistName]++
		}
		bands[domain.PriceBandIndex(p.Price)]++
	}
	facets := domain.ProductFacets{Artists: make([]domain.Facet, 0, len(artists))}
	for name, n := range artists {
		facets.Artists = append(facets.Artists, domain.Facet{Name: name, Count: n})
	}
	sort.Slice(facets.Artists, func(i, j int) bool { return facets.Artists[i].Name < facets.Artists[j].Name })
	for i, b := range domain.PriceBands {
		facets.PriceRanges = append(facets.PriceRanges, domain.Facet{Name: b.Label, Count: bands[i]})
	}

	var page []domain.Product
	if start := f.Offset(); start < len(matched) {
		end := start + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page = matched[start:end]
	}
	return domain.NewProductPage(f, page, len(matched), facets), nil
}

func sortNewestFirst(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].Key < products[j].Key
	})
}

// GetByID matches either the product id or its key.
func (m *Memory) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.byKey[id]; ok {
		return &p, nil
	}
	for _, p := range m.byKey {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byKey[p.Key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = time.Now().UTC()
	}
	m.byKey[p.Key] = p
	return &p, nil
}
