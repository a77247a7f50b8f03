package ledger

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/testutil"
)

// Unit Tests

func TestNewMySQLTransactionRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLTransactionRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func newTransaction(id string) *domain.Transaction {
	return &domain.Transaction{
		CheckoutRequestID: id,
		SessionID:         "session-1",
		Amount:            5900,
		PhoneNumber:       "254712345678",
		Status:            domain.TransactionStatusPending,
		TraceID:           "4bf92f3577b34da6a3ce929d0e0e4736",
	}
}

func TestTransactionRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newTransaction("ws_CO_1")))

	txn, err := repo.FindByCheckoutRequestID(ctx, "ws_CO_1")
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)
	assert.Equal(t, "session-1", txn.SessionID)
	assert.Equal(t, int64(5900), txn.Amount)
	assert.Equal(t, "254712345678", txn.PhoneNumber)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
	assert.Nil(t, txn.ResultCode)
	assert.Nil(t, txn.ResultDesc)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", txn.TraceID)
	assert.False(t, txn.CreatedAt.IsZero())
}

func TestTransactionRepository_InsertIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newTransaction("ws_CO_2")))

	again := newTransaction("ws_CO_2")
	again.Amount = 12100
	require.NoError(t, repo.Insert(ctx, again))

	txn, err := repo.FindByCheckoutRequestID(ctx, "ws_CO_2")
	require.NoError(t, err)
	assert.Equal(t, int64(12100), txn.Amount)
}

func TestTransactionRepository_UpdateOutcome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newTransaction("ws_CO_3")))

	code := "1032"
	desc := "Request cancelled by user"
	require.NoError(t, repo.UpdateOutcome(ctx, "ws_CO_3", domain.TransactionStatusFailed, &code, &desc))

	txn, err := repo.FindByCheckoutRequestID(ctx, "ws_CO_3")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, txn.Status)
	require.NotNil(t, txn.ResultCode)
	assert.Equal(t, "1032", *txn.ResultCode)
	require.NotNil(t, txn.ResultDesc)
	assert.Equal(t, desc, *txn.ResultDesc)
}

func TestTransactionRepository_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTransactionRepository(db)
	ctx := context.Background()

	_, err := repo.FindByCheckoutRequestID(ctx, "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	err = repo.UpdateOutcome(ctx, "missing", domain.TransactionStatusSuccess, nil, nil)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
