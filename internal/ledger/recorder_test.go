package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

func createDeadlockError() error {
	return &mysql.MySQLError{Number: 1213}
}

type mockTransactionRepository struct {
	InsertFunc        func(ctx context.Context, txn *domain.Transaction) error
	UpdateOutcomeFunc func(ctx context.Context, checkoutRequestID string, status string, resultCode *string, resultDesc *string) error
}

func (m *mockTransactionRepository) Insert(ctx context.Context, txn *domain.Transaction) error {
	return m.InsertFunc(ctx, txn)
}

func (m *mockTransactionRepository) UpdateOutcome(ctx context.Context, checkoutRequestID string, status string, resultCode *string, resultDesc *string) error {
	return m.UpdateOutcomeFunc(ctx, checkoutRequestID, status, resultCode, resultDesc)
}

func newTestRecorder(repo TransactionRepository, attempts int) (*Recorder, *[]time.Duration) {
	r := NewRecorder(repo, zap.NewNop(), attempts)
	var slept []time.Duration
	r.sleep = func(d time.Duration) { slept = append(slept, d) }
	return r, &slept
}

func pendingSession() domain.CheckoutSession {
	return domain.CheckoutSession{
		ID:                "6c1f8a52-2b7e-4f0a-8d55-0c9e1f3b7a21",
		CheckoutRequestID: "ws_CO_191020261200",
		AmountMinorUnits:  12100,
		PhoneNormalized:   "254712345678",
		State:             domain.PaymentStatePending,
	}
}

func TestRecordInitiated_BuildsPendingRow(t *testing.T) {
	var got *domain.Transaction
	repo := &mockTransactionRepository{
		InsertFunc: func(ctx context.Context, txn *domain.Transaction) error {
			got = txn
			return nil
		},
	}
	r, _ := newTestRecorder(repo, 3)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "submit")
	defer span.End()

	require.NoError(t, r.RecordInitiated(ctx, pendingSession()))

	require.NotNil(t, got)
	assert.Equal(t, "ws_CO_191020261200", got.CheckoutRequestID)
	assert.Equal(t, "6c1f8a52-2b7e-4f0a-8d55-0c9e1f3b7a21", got.SessionID)
	assert.Equal(t, int64(12100), got.Amount)
	assert.Equal(t, "254712345678", got.PhoneNumber)
	assert.Equal(t, domain.TransactionStatusPending, got.Status)
	assert.Equal(t, span.SpanContext().TraceID().String(), got.TraceID)
}

func TestRecordInitiated_NoSpanLeavesTraceIDEmpty(t *testing.T) {
	var got *domain.Transaction
	repo := &mockTransactionRepository{
		InsertFunc: func(ctx context.Context, txn *domain.Transaction) error {
			got = txn
			return nil
		},
	}
	r, _ := newTestRecorder(repo, 3)

	require.NoError(t, r.RecordInitiated(context.Background(), pendingSession()))
	assert.Empty(t, got.TraceID)
}

func TestRecordOutcome_MapsState(t *testing.T) {
	tests := []struct {
		name       string
		state      domain.PaymentState
		resultCode string
		message    string
		wantStatus string
	}{
		{"success", domain.PaymentStateSuccess, "0", "The service request is processed successfully.", domain.TransactionStatusSuccess},
		{"cancelled", domain.PaymentStateError, "1032", "Payment was cancelled by user", domain.TransactionStatusFailed},
		{"status check failed", domain.PaymentStateError, "", "Unable to verify payment status. Please check your payment history.", domain.TransactionStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var status string
			var code, desc *string
			repo := &mockTransactionRepository{
				UpdateOutcomeFunc: func(ctx context.Context, id string, s string, rc *string, rd *string) error {
					assert.Equal(t, "ws_CO_191020261200", id)
					status, code, desc = s, rc, rd
					return nil
				},
			}
			r, _ := newTestRecorder(repo, 3)

			session := pendingSession()
			session.State = tt.state
			session.LastResultCode = tt.resultCode
			session.LastMessage = tt.message

			require.NoError(t, r.RecordOutcome(context.Background(), session))
			assert.Equal(t, tt.wantStatus, status)
			if tt.resultCode == "" {
				assert.Nil(t, code)
			} else {
				require.NotNil(t, code)
				assert.Equal(t, tt.resultCode, *code)
			}
			require.NotNil(t, desc)
			assert.Equal(t, tt.message, *desc)
		})
	}
}

func TestRecorder_RetriesDeadlock(t *testing.T) {
	calls := 0
	repo := &mockTransactionRepository{
		InsertFunc: func(ctx context.Context, txn *domain.Transaction) error {
			calls++
			if calls < 3 {
				return createDeadlockError()
			}
			return nil
		},
	}
	r, slept := newTestRecorder(repo, 3)

	require.NoError(t, r.RecordInitiated(context.Background(), pendingSession()))
	assert.Equal(t, 3, calls)
	require.Len(t, *slept, 2)
	assert.InDelta(t, float64(100*time.Millisecond), float64((*slept)[0]), float64(20*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64((*slept)[1]), float64(40*time.Millisecond))
}

func TestRecorder_DeadlockExhaustsAttempts(t *testing.T) {
	calls := 0
	repo := &mockTransactionRepository{
		UpdateOutcomeFunc: func(ctx context.Context, id string, s string, rc *string, rd *string) error {
			calls++
			return &mysql.MySQLError{Number: 1205}
		},
	}
	r, _ := newTestRecorder(repo, 3)

	err := r.RecordOutcome(context.Background(), pendingSession())
	require.Error(t, err)
	assert.True(t, isDeadlockError(err))
	assert.Equal(t, 3, calls)
}

func TestRecorder_NonDeadlockErrorIsNotRetried(t *testing.T) {
	calls := 0
	repo := &mockTransactionRepository{
		InsertFunc: func(ctx context.Context, txn *domain.Transaction) error {
			calls++
			return errors.New("connection refused")
		},
	}
	r, slept := newTestRecorder(repo, 3)

	err := r.RecordInitiated(context.Background(), pendingSession())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestIsDeadlockError(t *testing.T) {
	assert.True(t, isDeadlockError(createDeadlockError()))
	assert.True(t, isDeadlockError(&mysql.MySQLError{Number: 1205}))
	assert.False(t, isDeadlockError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDeadlockError(errors.New("plain")))
}

func TestNewRecorder_MinimumOneAttempt(t *testing.T) {
	r := NewRecorder(&mockTransactionRepository{}, zap.NewNop(), 0)
	assert.Equal(t, 1, r.maxRetryAttempts)
}
