package domain

import (
	"time"

	apperrors "storefront/internal/errors"
)

const (
	StatusMessageWaiting   = "Waiting for payment confirmation..."
	StatusMessageConfirmed = "Payment confirmed!"
)

// CheckoutSession is a point-in-time view of one checkout attempt.
type CheckoutSession struct {
	ID                string
	Customer          CustomerDetails
	PhoneRaw          string
	PhoneNormalized   string
	Totals            OrderTotals
	AmountMinorUnits  int64
	CheckoutRequestID string
	State             PaymentState
	ErrorCode         apperrors.Code
	LastResultCode    string
	LastMessage       string
	StatusMessage     string
	PollAttempts      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
