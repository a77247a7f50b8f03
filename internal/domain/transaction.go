package domain

import "time"

type Transaction struct {
	ID                uint
	CheckoutRequestID string
	SessionID         string
	Amount            int64
	PhoneNumber       string
	Status            string
	ResultCode        *string
	ResultDesc        *string
	TraceID           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	TransactionStatusPending = "PENDING"
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)
