package domain

type PaymentState string

const (
	PaymentStateForm    PaymentState = "form"
	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateError   PaymentState = "error"
)

func (s PaymentState) IsTerminal() bool {
	return s == PaymentStateSuccess || s == PaymentStateError
}

// CanTransition reports whether the checkout state machine allows moving
// from s to next. Error only goes back to Form, never straight to Pending.
func (s PaymentState) CanTransition(next PaymentState) bool {
	switch s {
	case PaymentStateForm:
		return next == PaymentStatePending || next == PaymentStateError
	case PaymentStatePending:
		return next == PaymentStateSuccess || next == PaymentStateError
	case PaymentStateError:
		return next == PaymentStateForm
	default:
		return false
	}
}
