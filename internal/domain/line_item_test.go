package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItem_LineTotal(t *testing.T) {
	item := LineItem{
		ID:        1,
		Name:      "Minimal Cotton Tee",
		UnitPrice: decimal.RequireFromString("29.99"),
		Quantity:  3,
	}

	assert.True(t, decimal.RequireFromString("89.97").Equal(item.LineTotal()))
}

func TestLineItem_DecodesStoredCart(t *testing.T) {
	raw := `[{"id":2,"name":"Relaxed Fit Jeans","price":59.99,"category":"Women's","image":"https://img/2.jpg","quantity":2}]`

	var items []LineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 1)

	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, "Relaxed Fit Jeans", items[0].Name)
	assert.True(t, decimal.RequireFromString("59.99").Equal(items[0].UnitPrice))
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Women's", items[0].Category)
	assert.Equal(t, "https://img/2.jpg", items[0].ImageRef)
}

func TestLineItem_EncodesPriceAsNumber(t *testing.T) {
	items := []LineItem{
		{ID: 1, Name: "Minimal Cotton Tee", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
		{ID: 2, Name: "Relaxed Fit Jeans", UnitPrice: decimal.RequireFromString("59.99"), Quantity: 2, Category: "Women's"},
	}

	data, err := json.Marshal(items)
	require.NoError(t, err)

	assert.JSONEq(t,
		`[{"id":1,"name":"Minimal Cotton Tee","price":50,"quantity":1},`+
			`{"id":2,"name":"Relaxed Fit Jeans","price":59.99,"quantity":2,"category":"Women's"}]`,
		string(data))
	assert.NotContains(t, string(data), `"price":"`)

	var decoded []LineItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.True(t, decimal.RequireFromString("59.99").Equal(decoded[1].UnitPrice))
}

func TestCustomerDetails_WithDefaults(t *testing.T) {
	c := CustomerDetails{FirstName: "Amina"}.WithDefaults()
	assert.Equal(t, DefaultCountry, c.Country)
	assert.Equal(t, DefaultPaymentMethod, c.PaymentMethod)

	c = CustomerDetails{Country: "Uganda", PaymentMethod: "card"}.WithDefaults()
	assert.Equal(t, "Uganda", c.Country)
	assert.Equal(t, "card", c.PaymentMethod)
}
