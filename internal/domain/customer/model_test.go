package customer

import (
	"testing"
	"time"

	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOverdueSinceIsSticky(t *testing.T) {
	c := &Customer{Status: types.CustomerStatusActive}
	first := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, c.MarkOverdueSince(first))
	assert.False(t, c.MarkOverdueSince(later))
	require.NotNil(t, c.DueSince)
	assert.Equal(t, first, *c.DueSince)
}

func TestMonthsOverdue(t *testing.T) {
	c := &Customer{}
	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, c.MonthsOverdue(now))

	c.MarkOverdueSince(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, c.MonthsOverdue(now))
}

func TestSettle(t *testing.T) {
	since := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	c := &Customer{
		Status:         types.CustomerStatusSuspended,
		OutstandingDue: decimal.NewFromInt(300),
		DueSince:       &since,
	}

	assert.True(t, c.Settle())
	assert.True(t, c.OutstandingDue.IsZero())
	assert.Nil(t, c.DueSince)
	assert.Equal(t, types.CustomerStatusActive, c.Status)

	discontinued := &Customer{Status: types.CustomerStatusDiscontinued}
	assert.False(t, discontinued.Settle())
	assert.Equal(t, types.CustomerStatusDiscontinued, discontinued.Status)
}

func TestTransitionTo(t *testing.T) {
	c := &Customer{Status: types.CustomerStatusDiscontinued}
	assert.Error(t, c.TransitionTo(types.CustomerStatusActive))
	assert.Equal(t, types.CustomerStatusDiscontinued, c.Status)

	c.Status = types.CustomerStatusActive
	require.NoError(t, c.TransitionTo(types.CustomerStatusSuspended))
	assert.Equal(t, types.CustomerStatusSuspended, c.Status)
}
