package checkout

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/processor"
)

type CartStore interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Clear(ctx context.Context) error
}

type PaymentProcessor interface {
	Initiate(ctx context.Context, req processor.InitiateRequest) (*processor.InitiateResponse, error)
	CheckStatus(ctx context.Context, checkoutRequestID string) (*processor.StatusResult, error)
}

// TransactionRecorder keeps a durable trail of payment attempts. It is
// optional; a nil recorder disables recording.
type TransactionRecorder interface {
	RecordInitiated(ctx context.Context, session domain.CheckoutSession) error
	RecordOutcome(ctx context.Context, session domain.CheckoutSession) error
}
