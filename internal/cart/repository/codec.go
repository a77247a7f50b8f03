package repository

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
)

func encodeItems(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding cart: %w", err)
	}
	return data, nil
}

func decodeItems(data []byte) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return items, nil
}
