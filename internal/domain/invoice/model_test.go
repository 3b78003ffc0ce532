package invoice

import (
	"testing"
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceStatusChanges(t *testing.T) {
	inv := &Invoice{Status: types.InvoiceStatusIssued}
	require.NoError(t, inv.MarkOverdue())
	assert.True(t, inv.IsUnpaid())

	assert.True(t, ierr.IsInvalidOperation(inv.MarkOverdue()))

	require.NoError(t, inv.MarkPaid())
	assert.False(t, inv.IsUnpaid())
	assert.True(t, ierr.IsInvalidOperation(inv.MarkPaid()))
}

func TestIsPastDue(t *testing.T) {
	due := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	inv := &Invoice{DueDate: due}

	assert.False(t, inv.IsPastDue(due))
	assert.True(t, inv.IsPastDue(due.Add(time.Second)))
}

func TestSumTotals(t *testing.T) {
	invoices := []*Invoice{
		{Total: decimal.RequireFromString("150.00")},
		{Total: decimal.RequireFromString("210.50")},
	}
	assert.True(t, decimal.RequireFromString("360.50").Equal(SumTotals(invoices)))
	assert.True(t, SumTotals(nil).IsZero())
}
