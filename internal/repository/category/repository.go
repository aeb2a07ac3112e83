package category

import (
	"context"

	"dots-marketplace/internal/domain"
)

// Repository lists the categories present in the catalog, ordered by name.
type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
}
