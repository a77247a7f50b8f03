package processor

// Outcome is what a status check means for a pending payment.
type Outcome int

const (
	// OutcomeUndetermined means no usable result code yet; keep polling.
	OutcomeUndetermined Outcome = iota
	OutcomeConfirmed
	OutcomeProcessing
	OutcomeCancelled
	OutcomeFailed
)

const (
	ResultCodeSuccess         = "0"
	ResultCodeProcessing      = "1"
	ResultCodeCancelledByUser = "1032"
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeProcessing:
		return "processing"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "undetermined"
	}
}

// Interpret maps a status result to an outcome. Only explicit codes drive a
// decision; a missing or malformed code is undetermined.
func Interpret(r StatusResult) Outcome {
	if !r.Determined() {
		return OutcomeUndetermined
	}

	switch r.Code.Value {
	case ResultCodeSuccess:
		return OutcomeConfirmed
	case ResultCodeProcessing:
		return OutcomeProcessing
	case ResultCodeCancelledByUser:
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
