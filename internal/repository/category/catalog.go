package category

import (
	"context"
	"sort"
	"strings"

	"dots-marketplace/internal/domain"
)

type productLister interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
}

type catalogRepo struct {
	products productLister
}

// FromCatalog derives categories by scanning every product. Used with the
// in-memory catalog.
func FromCatalog(products productLister) Repository {
	return &catalogRepo{products: products}
}

func (r *catalogRepo) List(ctx context.Context) ([]domain.Category, error) {
	products, err := r.products.List(ctx, "")
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range products {
		if name := strings.TrimSpace(p.Category); name != "" {
			counts[name]++
		}
	}
	result := make([]domain.Category, 0, len(counts))
	for name, n := range counts {
		result = append(result, domain.Category{Name: name, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
