package domain

import (
	"net/url"
	"strings"
)

// Customization holds the shopper's choices for a configurable product
// (size, color, personalMessage). Empty values are treated as unset.
type Customization map[string]string

// Key returns the canonical encoding used to compare customizations.
func (c Customization) Key() string {
	if len(c) == 0 {
		return ""
	}
	vals := url.Values{}
	for k, v := range c {
		k = strings.TrimSpace(k)
		if k == "" || v == "" {
			continue
		}
		vals.Set(k, v)
	}
	// Encode sorts by key.
	return vals.Encode()
}

// Clone returns a copy without empty entries, or nil when nothing is set.
func (c Customization) Clone() Customization {
	if len(c) == 0 {
		return nil
	}
	out := make(Customization, len(c))
	for k, v := range c {
		if strings.TrimSpace(k) == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MaxLineQuantity is the most units a single cart line may hold.
const MaxLineQuantity = 999

type CartLine struct {
	ProductID     string        `json:"productId"`
	ProductName   string        `json:"productName"`
	ProductImage  string        `json:"productImage"`
	ArtistName    string        `json:"artistName"`
	Price         int64         `json:"price"`
	Quantity      int           `json:"quantity"`
	Customization Customization `json:"customization,omitempty"`
}

// IdentityKey identifies the logical selection a line represents.
func (l CartLine) IdentityKey() string {
	return LineKey(l.ProductID, l.Customization)
}

// LineKey builds the identity key for a product and customization pair.
func LineKey(productID string, c Customization) string {
	return productID + "\x00" + c.Key()
}

// Cart is the shopper's working set. Totals are always derived from Lines.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	Subtotal  int64      `json:"subtotal"`
	Shipping  int64      `json:"shipping"`
	Tax       int64      `json:"tax"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CloneLines deep-copies lines including their customization maps.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		l.Customization = l.Customization.Clone()
		out[i] = l
	}
	return out
}

// ShippingAddress is the checkout destination. Only Country affects pricing.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}
