package cart

import (
	"context"

	"storefront/internal/domain"
)

// Store persists the cart as a single list of line items. Implementations
// keep the whole list under one key and return an empty slice for a cart
// that was never saved or has been cleared.
type Store interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
	Clear(ctx context.Context) error
}
