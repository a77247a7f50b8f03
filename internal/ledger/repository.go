package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type MySQLTransactionRepository struct {
	db *sql.DB
}

func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}

// Insert stores a new attempt. Re-recording the same checkout request id
// refreshes the row instead of failing.
func (r *MySQLTransactionRepository) Insert(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO Transactions (checkoutRequestId, sessionId, amount, phoneNumber, status, traceId)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			sessionId = VALUES(sessionId),
			amount = VALUES(amount),
			phoneNumber = VALUES(phoneNumber),
			status = VALUES(status),
			traceId = VALUES(traceId)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.CheckoutRequestID, txn.SessionID, txn.Amount, txn.PhoneNumber, txn.Status, txn.TraceID,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

func (r *MySQLTransactionRepository) UpdateOutcome(
	ctx context.Context,
	checkoutRequestID string,
	status string,
	resultCode *string,
	resultDesc *string,
) error {
	query := `UPDATE Transactions SET status = ?, resultCode = ?, resultDesc = ? WHERE checkoutRequestId = ?`

	result, err := r.db.ExecContext(ctx, query, status, resultCode, resultDesc, checkoutRequestID)
	if err != nil {
		return fmt.Errorf("updating transaction outcome: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", checkoutRequestID))
	}

	return nil
}

func (r *MySQLTransactionRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error) {
	query := `
		SELECT id, checkoutRequestId, sessionId, amount, phoneNumber, status,
		       resultCode, resultDesc, traceId, createdAt, updatedAt
		FROM Transactions
		WHERE checkoutRequestId = ?
	`

	var txn domain.Transaction
	err := r.db.QueryRowContext(ctx, query, checkoutRequestID).Scan(
		&txn.ID, &txn.CheckoutRequestID, &txn.SessionID, &txn.Amount, &txn.PhoneNumber,
		&txn.Status, &txn.ResultCode, &txn.ResultDesc, &txn.TraceID,
		&txn.CreatedAt, &txn.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", checkoutRequestID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying transaction by checkout request id: %w", err)
	}

	return &txn, nil
}
