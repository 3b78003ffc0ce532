package delivery

import (
	"testing"
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonnelValidate(t *testing.T) {
	valid := func() *Personnel {
		return &Personnel{
			Name:           "Suresh",
			Phone:          "9811111111",
			CommissionRate: DefaultCommissionRate,
			IsActive:       true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Personnel)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Personnel) {}},
		{name: "zero rate", mutate: func(p *Personnel) { p.CommissionRate = decimal.Zero }},
		{name: "missing name", mutate: func(p *Personnel) { p.Name = "" }, wantErr: true},
		{name: "missing phone", mutate: func(p *Personnel) { p.Phone = "" }, wantErr: true},
		{name: "negative rate", mutate: func(p *Personnel) { p.CommissionRate = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "rate too high", mutate: func(p *Personnel) { p.CommissionRate = decimal.NewFromInt(100) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPersonnelCommission(t *testing.T) {
	p := &Personnel{CommissionRate: decimal.RequireFromString("2.50")}
	assert.True(t, decimal.RequireFromString("15.50").Equal(p.Commission(decimal.NewFromInt(620))))
	assert.True(t, p.Commission(decimal.Zero).IsZero())
}

func TestScheduleUpdateStatus(t *testing.T) {
	now := time.Date(2025, time.January, 20, 7, 30, 0, 0, time.UTC)

	t.Run("delivered defaults to now", func(t *testing.T) {
		s := &Schedule{Status: types.DeliveryStatusScheduled}
		require.NoError(t, s.UpdateStatus(types.DeliveryStatusDelivered, nil, now))
		assert.Equal(t, types.DeliveryStatusDelivered, s.Status)
		require.NotNil(t, s.DeliveryTime)
		assert.Equal(t, now, *s.DeliveryTime)
	})

	t.Run("delivered keeps given time", func(t *testing.T) {
		at := time.Date(2025, time.January, 20, 6, 15, 0, 0, time.UTC)
		s := &Schedule{Status: types.DeliveryStatusMissed}
		require.NoError(t, s.UpdateStatus(types.DeliveryStatusDelivered, lo.ToPtr(at), now))
		assert.Equal(t, at, *s.DeliveryTime)
	})

	t.Run("missed leaves time empty", func(t *testing.T) {
		s := &Schedule{Status: types.DeliveryStatusScheduled}
		require.NoError(t, s.UpdateStatus(types.DeliveryStatusMissed, nil, now))
		assert.Nil(t, s.DeliveryTime)
	})

	t.Run("delivered is final", func(t *testing.T) {
		s := &Schedule{Status: types.DeliveryStatusDelivered}
		err := s.UpdateStatus(types.DeliveryStatusMissed, nil, now)
		assert.True(t, ierr.IsInvalidOperation(err))
		assert.Equal(t, types.DeliveryStatusDelivered, s.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		s := &Schedule{Status: types.DeliveryStatusScheduled}
		assert.True(t, ierr.IsValidation(s.UpdateStatus("LOST", nil, now)))
	})
}
