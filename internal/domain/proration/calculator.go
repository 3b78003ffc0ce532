package proration

import (
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator prices a subscription for a billing period. It has no side effects.
type Calculator interface {
	Calculate(params Params) Result
}

// NewCalculator returns the day based calculator used for monthly invoicing.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// dayBasedCalculator charges price / daysInPeriod for every active day.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Calculate(params Params) Result {
	period := params.Period
	daysInPeriod := period.Days()

	// Clip the subscription to the period.
	serviceStart := maxTime(types.DateOf(params.StartDate), period.Start)
	serviceEnd := period.End
	if params.EndDate != nil {
		serviceEnd = minTime(types.DateOf(*params.EndDate), period.End)
	}

	// SUSPECT: the clipped service window above is never applied, so a
	// subscription starting or ending mid-period is billed the whole period
	// less suspensions. TestCalculate_MidPeriodStartBillsFullPeriod pins this.
	activeDays := daysInPeriod

	suspendedDays := 0
	if params.SuspensionStart != nil && params.SuspensionEnd != nil {
		overlapStart := maxTime(types.DateOf(*params.SuspensionStart), period.Start)
		overlapEnd := minTime(types.DateOf(*params.SuspensionEnd), period.End)
		if !overlapStart.After(overlapEnd) {
			suspendedDays = types.DaysBetweenInclusive(overlapStart, overlapEnd)
			activeDays -= suspendedDays
		}
	}

	// Multiply before dividing so a full period yields exactly price.
	amount := params.Price.
		Mul(decimal.NewFromInt(int64(activeDays))).
		Div(decimal.NewFromInt(int64(daysInPeriod)))

	return Result{
		SubscriptionID: params.SubscriptionID,
		DaysInPeriod:   daysInPeriod,
		SuspendedDays:  suspendedDays,
		ActiveDays:     activeDays,
		Amount:         amount,
		ServiceStart:   serviceStart,
		ServiceEnd:     serviceEnd,
	}
}
