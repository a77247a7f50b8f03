package errors

import (
	stderrors "errors"
	"fmt"
)

type Code string

const (
	CodeInvalidPhoneNumber     Code = "INVALID_PHONE_NUMBER"
	CodeInvalidLineItem        Code = "INVALID_LINE_ITEM"
	CodeInitiationRejected     Code = "INITIATION_REJECTED"
	CodeStatusCheckUnavailable Code = "STATUS_CHECK_UNAVAILABLE"
	CodePaymentCancelled       Code = "PAYMENT_CANCELLED"
	CodePaymentFailed          Code = "PAYMENT_FAILED"
)

// CheckoutError is a failure of the checkout flow. Message is meant to be
// shown to the customer as is.
type CheckoutError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *CheckoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Cause
}

func NewCheckoutError(code Code, message string, cause error) *CheckoutError {
	return &CheckoutError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func IsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCode reports whether err is a CheckoutError carrying code.
func HasCode(err error, code Code) bool {
	ce, ok := IsCheckoutError(err)
	return ok && ce.Code == code
}
