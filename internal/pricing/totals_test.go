package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

func item(price string, qty int) domain.LineItem {
	return domain.LineItem{UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute_FreeShippingAboveThreshold(t *testing.T) {
	totals, err := Compute([]domain.LineItem{item("50", 1), item("60", 1)})
	require.NoError(t, err)

	assertDecimal(t, "110", totals.Subtotal)
	assertDecimal(t, "0", totals.Shipping)
	assertDecimal(t, "11.0", totals.Tax)
	assertDecimal(t, "121.0", totals.Total)
}

func TestCompute_FlatShippingBelowThreshold(t *testing.T) {
	totals, err := Compute([]domain.LineItem{item("20", 2)})
	require.NoError(t, err)

	assertDecimal(t, "40", totals.Subtotal)
	assertDecimal(t, "15", totals.Shipping)
	assertDecimal(t, "4.0", totals.Tax)
	assertDecimal(t, "59.0", totals.Total)
}

func TestCompute_ExactlyOneHundredStillPaysShipping(t *testing.T) {
	totals, err := Compute([]domain.LineItem{item("100", 1)})
	require.NoError(t, err)

	assertDecimal(t, "15", totals.Shipping)
	assertDecimal(t, "125", totals.Total)
}

func TestCompute_EmptyCart(t *testing.T) {
	totals, err := Compute(nil)
	require.NoError(t, err)

	assertDecimal(t, "0", totals.Subtotal)
	assertDecimal(t, "15", totals.Shipping)
	assertDecimal(t, "0", totals.Tax)
	assertDecimal(t, "15", totals.Total)
}

func TestCompute_FractionalPrices(t *testing.T) {
	totals, err := Compute([]domain.LineItem{item("29.99", 1), item("59.99", 2)})
	require.NoError(t, err)

	assertDecimal(t, "149.97", totals.Subtotal)
	assertDecimal(t, "0", totals.Shipping)
	assertDecimal(t, "14.997", totals.Tax)
	assertDecimal(t, "164.967", totals.Total)
}

func TestCompute_InvalidLineItem(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.LineItem
		field string
	}{
		{"negative price", []domain.LineItem{item("10", 1), item("-1", 1)}, "items[1].price"},
		{"zero quantity", []domain.LineItem{item("10", 0)}, "items[0].quantity"},
		{"negative quantity", []domain.LineItem{item("10", -2)}, "items[0].quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.items)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidLineItem))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCompute_TotalsInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rng.Intn(6)
		items := make([]domain.LineItem, n)
		for j := range items {
			items[j] = domain.LineItem{
				UnitPrice: decimal.New(rng.Int63n(20000), -2),
				Quantity:  1 + rng.Intn(5),
			}
		}

		totals, err := Compute(items)
		require.NoError(t, err)

		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)))
		assert.True(t, totals.Shipping.Equal(decimal.Zero) || totals.Shipping.Equal(FlatShipping))
		assert.False(t, totals.Total.IsNegative())
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"121.0", 12100},
		{"59", 5900},
		{"164.967", 16497},
		{"0.005", 1},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, MinorUnits(decimal.RequireFromString(tt.amount)))
		})
	}
}
