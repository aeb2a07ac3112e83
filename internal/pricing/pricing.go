// Package pricing derives cart totals from line items and an optional destination.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"dots-marketplace/internal/domain"
)

// Rules are the business constants behind shipping and tax.
type Rules struct {
	FreeShippingThreshold int64
	DomesticShipping      int64
	InternationalShipping int64
	TaxRate               decimal.Decimal
	DomesticCountry       string
}

// DefaultRules returns the marketplace defaults: free shipping from 2000,
// 100 domestic / 500 international flat shipping, 18% GST on domestic orders.
func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: 2000,
		DomesticShipping:      100,
		InternationalShipping: 500,
		TaxRate:               decimal.RequireFromString("0.18"),
		DomesticCountry:       "India",
	}
}

// Totals are the derived monetary fields of a cart.
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	Shipping  int64 `json:"shipping"`
	Tax       int64 `json:"tax"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"itemCount"`
}

// Calculator applies Rules. It holds no state besides the rules.
type Calculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *Calculator {
	return &Calculator{rules: rules}
}

func (c *Calculator) Rules() Rules {
	return c.rules
}

// Subtotal is the sum of price times quantity.
func Subtotal(lines []domain.CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Price * int64(l.Quantity)
	}
	return sum
}

// ItemCount is the sum of quantities.
func ItemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Shipping returns zero for an empty cart or at/above the free-shipping
// threshold, the international rate for a foreign address, and the domestic
// rate otherwise.
func (c *Calculator) Shipping(lines []domain.CartLine, addr *domain.ShippingAddress) int64 {
	if len(lines) == 0 || Subtotal(lines) >= c.rules.FreeShippingThreshold {
		return 0
	}
	if c.IsInternational(addr) {
		return c.rules.InternationalShipping
	}
	return c.rules.DomesticShipping
}

// Tax applies the domestic rate, rounded half-up to a whole amount.
// International orders carry tax in the listed price.
func (c *Calculator) Tax(lines []domain.CartLine, addr *domain.ShippingAddress) int64 {
	if c.IsInternational(addr) {
		return 0
	}
	tax := decimal.NewFromInt(Subtotal(lines)).Mul(c.rules.TaxRate).Round(0)
	return tax.IntPart()
}

// Totals computes every derived field at once.
func (c *Calculator) Totals(lines []domain.CartLine, addr *domain.ShippingAddress) Totals {
	subtotal := Subtotal(lines)
	shipping := c.Shipping(lines, addr)
	tax := c.Tax(lines, addr)
	return Totals{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal + shipping + tax,
		ItemCount: ItemCount(lines),
	}
}

// Price returns a cart for lines with every derived field recomputed.
// Without an address the cart is priced as domestic.
func (c *Calculator) Price(lines []domain.CartLine) domain.Cart {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	t := c.Totals(lines, nil)
	return domain.Cart{
		Lines:     lines,
		Subtotal:  t.Subtotal,
		Shipping:  t.Shipping,
		Tax:       t.Tax,
		Total:     t.Total,
		ItemCount: t.ItemCount,
	}
}

// IsInternational reports whether addr ships outside the domestic country.
// A missing address counts as domestic.
func (c *Calculator) IsInternational(addr *domain.ShippingAddress) bool {
	if addr == nil {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(addr.Country), strings.TrimSpace(c.rules.DomesticCountry))
}
