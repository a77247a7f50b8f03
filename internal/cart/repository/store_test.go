package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/sqlite"
	"storefront/internal/testutil"
)

type store interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
	Clear(ctx context.Context) error
}

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{ID: 1, Name: "Minimal Cotton Tee", UnitPrice: decimal.RequireFromString("29.99"), Quantity: 2, Category: "Men's", ImageRef: "tee.jpg"},
		{ID: 3, Name: "Oversized Hoodie", UnitPrice: decimal.RequireFromString("49.99"), Quantity: 1, Category: "Unisex"},
	}
}

func exerciseStore(t *testing.T, s store) {
	ctx := context.Background()

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	require.NoError(t, s.Save(ctx, sampleItems()))

	items, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, "Minimal Cotton Tee", items[0].Name)
	assert.True(t, decimal.RequireFromString("29.99").Equal(items[0].UnitPrice))
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "tee.jpg", items[0].ImageRef)
	assert.Equal(t, 3, items[1].ID)

	// overwrite, not append
	require.NoError(t, s.Save(ctx, sampleItems()[:1]))
	items, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, s.Clear(ctx))
	items, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// clearing an already empty cart is fine
	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_SaveNil(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Save(context.Background(), nil))

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSQLiteStore(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewSQLiteStore(context.Background(), db, "cart")
	require.NoError(t, err)

	exerciseStore(t, s)
}

func TestSQLiteStore_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer db.Close()

	a, err := NewSQLiteStore(ctx, db, "cart")
	require.NoError(t, err)
	b, err := NewSQLiteStore(ctx, db, "cart:other")
	require.NoError(t, err)

	require.NoError(t, a.Save(ctx, sampleItems()))

	items, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, b.Clear(ctx))
	items, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSQLiteStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer db.Close()

	s, err := NewSQLiteStore(ctx, db, "cart")
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES ('cart', 'not json', '')`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	key := testutil.RedisTestKey(t)
	defer client.Del(context.Background(), key)

	exerciseStore(t, NewRedisStore(client, key))
}
