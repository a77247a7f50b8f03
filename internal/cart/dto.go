package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type AddItemRequest struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items     []LineItemDTO `json:"items"`
	ItemCount int           `json:"itemCount"`
	Totals    TotalsDTO     `json:"totals"`
}

type LineItemDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
	Category  string `json:"category,omitempty"`
	Image     string `json:"image,omitempty"`
}

type TotalsDTO struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func NewTotalsDTO(t domain.OrderTotals) TotalsDTO {
	return TotalsDTO{
		Subtotal: t.Subtotal.StringFixed(2),
		Shipping: t.Shipping.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}

func newCartResponse(items []domain.LineItem, totals domain.OrderTotals) CartResponse {
	dtos := make([]LineItemDTO, 0, len(items))
	count := 0
	for _, it := range items {
		dtos = append(dtos, LineItemDTO{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.UnitPrice.StringFixed(2),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().StringFixed(2),
			Category:  it.Category,
			Image:     it.ImageRef,
		})
		count += it.Quantity
	}

	return CartResponse{
		Items:     dtos,
		ItemCount: count,
		Totals:    NewTotalsDTO(totals),
	}
}
