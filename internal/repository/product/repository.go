package product

import (
	"context"

	"dots-marketplace/internal/domain"
)

// Repository is the catalog read side used by the cart and storefront, plus
// Upsert for the importer and seed. List with an empty category returns every
// product. Search expects a normalized filter.
type Repository interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Search(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
