package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentState_IsTerminal(t *testing.T) {
	assert.False(t, PaymentStateForm.IsTerminal())
	assert.False(t, PaymentStatePending.IsTerminal())
	assert.True(t, PaymentStateSuccess.IsTerminal())
	assert.True(t, PaymentStateError.IsTerminal())
}

func TestPaymentState_CanTransition(t *testing.T) {
	tests := []struct {
		from  PaymentState
		to    PaymentState
		valid bool
	}{
		{PaymentStateForm, PaymentStatePending, true},
		{PaymentStateForm, PaymentStateError, true},
		{PaymentStateForm, PaymentStateSuccess, false},
		{PaymentStatePending, PaymentStateSuccess, true},
		{PaymentStatePending, PaymentStateError, true},
		{PaymentStatePending, PaymentStateForm, false},
		{PaymentStateError, PaymentStateForm, true},
		{PaymentStateError, PaymentStatePending, false},
		{PaymentStateSuccess, PaymentStateForm, false},
		{PaymentStateSuccess, PaymentStateError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.from.CanTransition(tt.to))
		})
	}
}
