package pricing

import (
	"testing"

	"dots-marketplace/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func lines(pq ...int64) []domain.CartLine {
	var out []domain.CartLine
	for i := 0; i+1 < len(pq); i += 2 {
		out = append(out, domain.CartLine{ProductID: "p", Price: pq[i], Quantity: int(pq[i+1])})
	}
	return out
}

var (
	domestic = &domain.ShippingAddress{Country: "India"}
	abroad   = &domain.ShippingAddress{Country: "France"}
)

func TestSubtotalAndItemCount(t *testing.T) {
	l := lines(250, 3, 1000, 2, 0, 5)
	assert.Equal(t, int64(2750), Subtotal(l))
	assert.Equal(t, 10, ItemCount(l))
}

func TestShippingBoundaries(t *testing.T) {
	calc := NewCalculator(DefaultRules())

	assert.Equal(t, int64(0), calc.Shipping(lines(2000, 1), nil), "threshold is inclusive")
	assert.Equal(t, int64(0), calc.Shipping(lines(2000, 1), abroad))
	assert.Equal(t, int64(100), calc.Shipping(lines(1999, 1), domestic))
	assert.Equal(t, int64(100), calc.Shipping(lines(1999, 1), nil))
	assert.Equal(t, int64(500), calc.Shipping(lines(1999, 1), abroad))
}

func TestTax(t *testing.T) {
	calc := NewCalculator(DefaultRules())

	assert.Equal(t, int64(360), calc.Tax(lines(2000, 1), domestic))
	assert.Equal(t, int64(360), calc.Tax(lines(2000, 1), nil))
	assert.Equal(t, int64(0), calc.Tax(lines(2000, 1), abroad))
}

func TestTaxRoundsHalfUp(t *testing.T) {
	rules := DefaultRules()
	rules.TaxRate = decimal.RequireFromString("0.5")
	calc := NewCalculator(rules)

	// 5 * 0.5 = 2.5 rounds up to 3, 3 * 0.5 = 1.5 rounds up to 2.
	assert.Equal(t, int64(3), calc.Tax(lines(5, 1), nil))
	assert.Equal(t, int64(2), calc.Tax(lines(3, 1), nil))
	// 18% of 1002 = 180.36, of 1003 = 180.54.
	assert.Equal(t, int64(180), NewCalculator(DefaultRules()).Tax(lines(1002, 1), nil))
	assert.Equal(t, int64(181), NewCalculator(DefaultRules()).Tax(lines(1003, 1), nil))
}

func TestEmptyLinesAreAllZero(t *testing.T) {
	calc := NewCalculator(DefaultRules())
	assert.Equal(t, Totals{}, calc.Totals(nil, nil))
	assert.Equal(t, Totals{}, calc.Totals([]domain.CartLine{}, abroad))
}

func TestCountryMatchIgnoresCaseAndSpace(t *testing.T) {
	calc := NewCalculator(DefaultRules())
	assert.False(t, calc.IsInternational(&domain.ShippingAddress{Country: " india "}))
	assert.True(t, calc.IsInternational(&domain.ShippingAddress{Country: ""}))
}

func TestPriceScenarios(t *testing.T) {
	calc := NewCalculator(DefaultRules())
	cases := []struct {
		name  string
		lines []domain.CartLine
		want  Totals
	}{
		{"two at 1000", lines(1000, 2), Totals{Subtotal: 2000, Shipping: 0, Tax: 360, Total: 2360, ItemCount: 2}},
		{"one at 1000", lines(1000, 1), Totals{Subtotal: 1000, Shipping: 100, Tax: 180, Total: 1280, ItemCount: 1}},
		{"one at 3000", lines(3000, 1), Totals{Subtotal: 3000, Shipping: 0, Tax: 540, Total: 3540, ItemCount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := calc.Price(tc.lines)
			assert.Equal(t, tc.want.Subtotal, cart.Subtotal)
			assert.Equal(t, tc.want.Shipping, cart.Shipping)
			assert.Equal(t, tc.want.Tax, cart.Tax)
			assert.Equal(t, tc.want.Total, cart.Total)
			assert.Equal(t, tc.want.ItemCount, cart.ItemCount)
		})
	}
}
