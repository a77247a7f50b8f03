package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/pricing"
)

// Service applies cart edits as load-modify-save cycles over a Store. Edits
// are serialized within the process.
type Service struct {
	store  Store
	logger *zap.Logger
	mu     sync.Mutex
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Load returns the persisted cart. Checkout reads the cart through here so
// its Clear is serialized with cart edits.
func (s *Service) Load(ctx context.Context) ([]domain.LineItem, error) {
	return s.store.Load(ctx)
}

// Snapshot loads the cart and derives its totals in one read.
func (s *Service) Snapshot(ctx context.Context) ([]domain.LineItem, domain.OrderTotals, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, domain.OrderTotals{}, err
	}
	totals, err := pricing.Compute(items)
	if err != nil {
		return nil, domain.OrderTotals{}, err
	}
	return items, totals, nil
}

// AddItem adds item to the cart, or bumps the quantity of the line with the
// same product id. A zero quantity counts as one.
func (s *Service) AddItem(ctx context.Context, item domain.LineItem) ([]domain.LineItem, error) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if err := validateNewItem(item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
	}

	if err := s.store.Save(ctx, items); err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added", zap.Int("itemId", item.ID), zap.Int("quantity", item.Quantity), zap.Bool("merged", found))
	return items, nil
}

// UpdateQuantity sets the quantity of one line. Quantities below one are
// ignored and leave the cart untouched; removing a line is RemoveItem's job.
func (s *Service) UpdateQuantity(ctx context.Context, id int, quantity int) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, id)
	if idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("cart item %d not found", id))
	}

	if quantity < 1 {
		s.logger.Debug("ignoring quantity below one", zap.Int("itemId", id), zap.Int("quantity", quantity))
		return items, nil
	}

	items[idx].Quantity = quantity
	if err := s.store.Save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem drops the line with id. Unknown ids are not an error.
func (s *Service) RemoveItem(ctx context.Context, id int) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear(ctx)
}

func indexOf(items []domain.LineItem, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func validateNewItem(item domain.LineItem) error {
	var details []apperrors.ValidationDetail

	if item.ID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "id", Message: "id must be a positive integer"})
	}
	if item.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if item.UnitPrice.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price must be non-negative"})
	}
	if item.Quantity < 1 {
		details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be at least 1"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
