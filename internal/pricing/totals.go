// Package pricing derives order totals from cart line items.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

var (
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(15)
	TaxRate               = decimal.RequireFromString("0.10")

	minorUnitsPerMajor = decimal.NewFromInt(100)
)

// Compute returns subtotal, shipping, tax and total for items. Shipping is
// free once the subtotal exceeds FreeShippingThreshold.
func Compute(items []domain.LineItem) (domain.OrderTotals, error) {
	subtotal := decimal.Zero

	for idx, item := range items {
		if err := validateItem(idx, item); err != nil {
			return domain.OrderTotals{}, err
		}
		subtotal = subtotal.Add(item.LineTotal())
	}

	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(TaxRate)

	return domain.OrderTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}, nil
}

// MinorUnits converts a major-unit amount to the processor's integer minor
// unit, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

func validateItem(idx int, item domain.LineItem) error {
	if item.UnitPrice.IsNegative() {
		return apperrors.NewCheckoutError(
			apperrors.CodeInvalidLineItem,
			fmt.Sprintf("items[%d].price must be non-negative", idx),
			nil,
		)
	}
	if item.Quantity < 1 {
		return apperrors.NewCheckoutError(
			apperrors.CodeInvalidLineItem,
			fmt.Sprintf("items[%d].quantity must be at least 1", idx),
			nil,
		)
	}
	return nil
}
