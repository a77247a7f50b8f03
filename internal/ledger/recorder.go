// Package ledger keeps a durable record of every payment attempt that
// reached the processor, keyed by the processor's checkout request id.
package ledger

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/telemetry"
)

type TransactionRepository interface {
	Insert(ctx context.Context, txn *domain.Transaction) error
	UpdateOutcome(ctx context.Context, checkoutRequestID string, status string, resultCode *string, resultDesc *string) error
}

// Recorder turns checkout session snapshots into ledger rows.
type Recorder struct {
	repo             TransactionRepository
	logger           *zap.Logger
	maxRetryAttempts int
	sleep            func(time.Duration)
}

func NewRecorder(repo TransactionRepository, logger *zap.Logger, maxRetryAttempts int) *Recorder {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &Recorder{
		repo:             repo,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		sleep:            time.Sleep,
	}
}

func (r *Recorder) RecordInitiated(ctx context.Context, session domain.CheckoutSession) error {
	txn := &domain.Transaction{
		CheckoutRequestID: session.CheckoutRequestID,
		SessionID:         session.ID,
		Amount:            session.AmountMinorUnits,
		PhoneNumber:       session.PhoneNormalized,
		Status:            domain.TransactionStatusPending,
		TraceID:           telemetry.TraceID(ctx),
	}

	return r.withRetry(ctx, "insert", session.CheckoutRequestID, func() error {
		return r.repo.Insert(ctx, txn)
	})
}

func (r *Recorder) RecordOutcome(ctx context.Context, session domain.CheckoutSession) error {
	status := TransactionStatus(session.State)
	resultCode := optional(session.LastResultCode)
	resultDesc := optional(session.LastMessage)

	return r.withRetry(ctx, "update", session.CheckoutRequestID, func() error {
		return r.repo.UpdateOutcome(ctx, session.CheckoutRequestID, status, resultCode, resultDesc)
	})
}

// TransactionStatus maps a payment state to the ledger status column.
func TransactionStatus(state domain.PaymentState) string {
	switch state {
	case domain.PaymentStateSuccess:
		return domain.TransactionStatusSuccess
	case domain.PaymentStateError:
		return domain.TransactionStatusFailed
	default:
		return domain.TransactionStatusPending
	}
}

func (r *Recorder) withRetry(ctx context.Context, op, checkoutRequestID string, fn func() error) error {
	// Wait before attempt 2 (100ms) and attempt 3 (200ms); later attempts reuse 200ms.
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	var err error
	for attempt := 1; attempt <= r.maxRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isDeadlockError(err) {
			return err
		}
		if attempt == r.maxRetryAttempts {
			break
		}
		if ctx.Err() != nil {
			return err
		}

		base := backoffs[min(attempt, len(backoffs)-1)]
		// ±20% jitter
		jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
		r.logger.Warn("ledger deadlock detected, retrying",
			zap.String("op", op),
			zap.String("checkoutRequestId", checkoutRequestID),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", r.maxRetryAttempts),
		)
		r.sleep(base + jitter)
	}

	return err
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
