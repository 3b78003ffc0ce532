package types

import (
	"testing"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerStatus_Transitions(t *testing.T) {
	assert.True(t, CustomerStatusActive.CanTransitionTo(CustomerStatusSuspended))
	assert.True(t, CustomerStatusSuspended.CanTransitionTo(CustomerStatusActive))
	assert.True(t, CustomerStatusActive.CanTransitionTo(CustomerStatusDiscontinued))
	assert.False(t, CustomerStatusDiscontinued.CanTransitionTo(CustomerStatusActive))
	assert.False(t, CustomerStatusActive.CanTransitionTo(CustomerStatusActive))

	next, err := CustomerStatusDiscontinued.TransitionTo(CustomerStatusActive)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
	assert.Equal(t, CustomerStatusDiscontinued, next)
}

func TestInvoiceStatus_Transitions(t *testing.T) {
	tests := []struct {
		from InvoiceStatus
		to   InvoiceStatus
		ok   bool
	}{
		{InvoiceStatusIssued, InvoiceStatusPaid, true},
		{InvoiceStatusIssued, InvoiceStatusOverdue, true},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusOverdue, false},
		{InvoiceStatusPaid, InvoiceStatusPaid, false},
		{InvoiceStatusPaid, InvoiceStatusOverdue, false},
		{InvoiceStatusCancelled, InvoiceStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			_, err := tt.from.TransitionTo(tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, ierr.IsInvalidOperation(err))
			}
		})
	}
}

func TestSubscriptionStatus_Terminal(t *testing.T) {
	assert.True(t, SubscriptionStatusCancelled.IsTerminal())
	assert.True(t, SubscriptionStatusExpired.IsTerminal())
	assert.False(t, SubscriptionStatusSuspended.IsTerminal())
	assert.False(t, SubscriptionStatusCancelled.CanTransitionTo(SubscriptionStatusActive))
	assert.True(t, SubscriptionStatusSuspended.CanTransitionTo(SubscriptionStatusActive))
}

func TestEnumValidation(t *testing.T) {
	assert.NoError(t, PaymentMethodUPI.Validate())
	assert.True(t, ierr.IsValidation(PaymentMethod("BITCOIN").Validate()))
	assert.True(t, ierr.IsValidation(NotificationChannel("FAX").Validate()))
	assert.NoError(t, BillingCycleQuarterly.Validate())
	assert.True(t, ierr.IsValidation(CustomerStatus("GONE").Validate()))
}
