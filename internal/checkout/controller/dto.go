package controller

import (
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type SubmitRequest struct {
	Customer domain.CustomerDetails `json:"customer"`
	// Phone is the number to charge; it defaults to customer.phone.
	Phone string `json:"phone"`
}

type SessionResponse struct {
	TraceID           string                 `json:"traceId"`
	SessionID         string                 `json:"sessionId"`
	State             string                 `json:"state"`
	Totals            cart.TotalsDTO         `json:"totals"`
	Amount            int64                  `json:"amount"`
	Customer          domain.CustomerDetails `json:"customer"`
	Phone             string                 `json:"phone,omitempty"`
	PhoneNumber       string                 `json:"phoneNumber,omitempty"`
	CheckoutRequestID string                 `json:"checkoutRequestId,omitempty"`
	ErrorCode         string                 `json:"errorCode,omitempty"`
	ResultCode        string                 `json:"resultCode,omitempty"`
	Message           string                 `json:"message,omitempty"`
	StatusMessage     string                 `json:"statusMessage,omitempty"`
	PollAttempts      int                    `json:"pollAttempts"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newSessionResponse(traceID string, s domain.CheckoutSession) SessionResponse {
	return SessionResponse{
		TraceID:           traceID,
		SessionID:         s.ID,
		State:             string(s.State),
		Totals:            cart.NewTotalsDTO(s.Totals),
		Amount:            s.AmountMinorUnits,
		Customer:          s.Customer,
		Phone:             s.PhoneRaw,
		PhoneNumber:       s.PhoneNormalized,
		CheckoutRequestID: s.CheckoutRequestID,
		ErrorCode:         string(s.ErrorCode),
		ResultCode:        s.LastResultCode,
		Message:           s.LastMessage,
		StatusMessage:     s.StatusMessage,
		PollAttempts:      s.PollAttempts,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
