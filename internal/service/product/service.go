package product

import (
	"context"
	"fmt"
	"strings"

	"dots-marketplace/internal/domain"
	productrepo "dots-marketplace/internal/repository/product"
)

// Customization keys a shopper may set on a cart line.
var customizationKeys = map[string]struct{}{
	"size":            {},
	"color":           {},
	"personalMessage": {},
}

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// DefaultRecommendations is how many related products are suggested by default.
const DefaultRecommendations = 4

// Search returns one page of products matching f, with facets over every match.
func (s *Service) Search(ctx context.Context, f domain.ProductFilter) (domain.ProductPage, error) {
	f = f.Normalize()
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return domain.ProductPage{}, fmt.Errorf("%w: minPrice above maxPrice", domain.ErrInvalidFilter)
	}
	return s.repo.Search(ctx, f)
}

// Recommendations suggests other products, same category first, then the
// newest of the rest of the catalog.
func (s *Service) Recommendations(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecommendations
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}

	out := make([]domain.Product, 0, limit)
	seen := map[string]struct{}{p.ID: {}}
	collect := func(candidates []domain.Product) {
		for _, c := range candidates {
			if len(out) == limit {
				return
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}

	if p.Category != "" {
		related, err := s.repo.List(ctx, p.Category)
		if err != nil {
			return nil, err
		}
		collect(related)
	}
	if len(out) < limit {
		all, err := s.repo.List(ctx, "")
		if err != nil {
			return nil, err
		}
		collect(all)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// CartLine builds a cart line from the current catalog entry, so name, image,
// artist and price always come from the catalog rather than the client.
func (s *Service) CartLine(ctx context.Context, productID string, c domain.Customization) (domain.CartLine, error) {
	for k := range c {
		if _, ok := customizationKeys[k]; !ok {
			return domain.CartLine{}, fmt.Errorf("%w: unknown customization %q", domain.ErrInvalidLine, k)
		}
	}
	p, err := s.Get(ctx, productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	return domain.CartLine{
		ProductID:     p.ID,
		ProductName:   p.Name,
		ProductImage:  p.PrimaryImage(),
		ArtistName:    p.ArtistName,
		Price:         p.Price,
		Customization: c.Clone(),
	}, nil
}
