package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. The JSON layout matches what the
// storefront keeps under the cart key.
type LineItem struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category,omitempty"`
	ImageRef  string          `json:"image,omitempty"`
}

// MarshalJSON writes the price as a JSON number, the format stored carts
// already use.
func (i LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		UnitPrice json.Number `json:"price"`
	}{
		plain:     plain(i),
		UnitPrice: json.Number(i.UnitPrice.String()),
	})
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotals is derived from the cart on every read and never stored.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}
