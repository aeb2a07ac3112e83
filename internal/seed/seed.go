package seed

import (
	"context"
	"fmt"

	"dots-marketplace/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Products is the demo catalog. Prices straddle the free-shipping threshold so
// both shipping branches are reachable from the storefront.
var Products = []domain.Product{
	{
		Key:         "blue-pottery-vase",
		Name:        "Blue Pottery Vase",
		Description: "Hand-painted quartz clay vase from Jaipur",
		Price:       1000,
		ArtistName:  "Meera Sharma",
		Category:    "Pottery",
		Images:      []string{"https://cdn.dots.example/products/blue-pottery-vase.jpg"},
		Attributes: map[string]interface{}{
			"colors":   []string{"blue", "white"},
			"tags":     []string{"jaipur", "home decor"},
			"featured": true,
		},
	},
	{
		Key:         "madhubani-print",
		Name:        "Madhubani Print",
		Description: "Natural pigment on handmade paper",
		Price:       3000,
		ArtistName:  "Sita Devi",
		Category:    "Paintings",
		Images:      []string{"https://cdn.dots.example/products/madhubani-print.jpg"},
		Attributes: map[string]interface{}{
			"sizes":    []string{"A4", "A3"},
			"tags":     []string{"bihar", "folk art"},
			"featured": true,
		},
	},
	{
		Key:         "kantha-cushion",
		Name:        "Kantha Cushion Cover",
		Description: "Running-stitch quilted cotton",
		Price:       650,
		ArtistName:  "Rupa Das",
		Category:    "Textiles",
		Images:      []string{"https://cdn.dots.example/products/kantha-cushion.jpg"},
		Attributes: map[string]interface{}{
			"colors": []string{"red", "indigo", "ochre"},
			"tags":   []string{"bengal", "home decor"},
		},
	},
	{
		Key:         "engraved-brass-diya",
		Name:        "Engraved Brass Diya",
		Description: "Can carry a personal message on the base",
		Price:       450,
		ArtistName:  "Ravi Kumar",
		Category:    "Metalwork",
		Images:      []string{"https://cdn.dots.example/products/engraved-brass-diya.jpg"},
		Attributes:  map[string]interface{}{"personalizable": true},
	},
}

// Apply upserts the demo catalog. It is idempotent: products are keyed by Key.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	for _, p := range Products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return 0, fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	return len(Products), nil
}
