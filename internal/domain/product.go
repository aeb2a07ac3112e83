package domain

import (
	"strings"
	"time"
)

// Product is a catalog item as supplied by the catalog collaborator.
type Product struct {
	ID          string                 `json:"id"`
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       int64                  `json:"price"`
	ArtistName  string                 `json:"artistName"`
	Category    string                 `json:"category"`
	Images      []string               `json:"images,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// PrimaryImage returns the first image URL or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is a catalog facet: a category name and how many products carry it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProductFilter narrows a catalog search. Zero values leave a field
// unconstrained; MaxPrice 0 means no upper bound.
type ProductFilter struct {
	Category string
	Search   string
	Artist   string
	MinPrice int64
	MaxPrice int64
	Featured bool
	Page     int
	Limit    int
}

// Normalize trims text fields and clamps paging to 1-based pages of at most
// MaxPageSize products.
func (f ProductFilter) Normalize() ProductFilter {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	f.Artist = strings.TrimSpace(f.Artist)
	if f.MinPrice < 0 {
		f.MinPrice = 0
	}
	if f.MaxPrice < 0 {
		f.MaxPrice = 0
	}
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	return f
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Matches applies every filter except paging to p.
func (f ProductFilter) Matches(p Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Artist != "" && !strings.EqualFold(p.ArtistName, f.Artist) {
		return false
	}
	if p.Price < f.MinPrice || (f.MaxPrice > 0 && p.Price > f.MaxPrice) {
		return false
	}
	if f.Featured && !p.Featured() {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags() {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Tags returns the "tags" attribute as strings.
func (p Product) Tags() []string {
	switch v := p.Attributes["tags"].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Featured reports whether the "featured" attribute is true.
func (p Product) Featured() bool {
	featured, _ := p.Attributes["featured"].(bool)
	return featured
}

// PriceBand is a facet bucket: Min inclusive, Max exclusive, Max 0 open ended.
type PriceBand struct {
	Label string
	Min   int64
	Max   int64
}

var PriceBands = []PriceBand{
	{Label: "0-1000", Min: 0, Max: 1000},
	{Label: "1000-3000", Min: 1000, Max: 3000},
	{Label: "3000-5000", Min: 3000, Max: 5000},
	{Label: "5000+", Min: 5000},
}

// PriceBandIndex returns the index into PriceBands holding price.
func PriceBandIndex(price int64) int {
	for i, b := range PriceBands {
		if price >= b.Min && (b.Max == 0 || price < b.Max) {
			return i
		}
	}
	return 0
}

type Facet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProductFacets summarize the whole filtered result, not just one page.
type ProductFacets struct {
	Artists     []Facet `json:"artists"`
	PriceRanges []Facet `json:"priceRanges"`
}

type ProductPage struct {
	Products   []Product     `json:"products"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Filters    ProductFacets `json:"filters"`
}

// NewProductPage fills the paging fields for a page of products out of total.
func NewProductPage(f ProductFilter, products []Product, total int, facets ProductFacets) ProductPage {
	if products == nil {
		products = []Product{}
	}
	return ProductPage{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		TotalPages: (total + f.Limit - 1) / f.Limit,
		Filters:    facets,
	}
}
