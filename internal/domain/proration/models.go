package proration

import (
	"time"

	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// Params holds everything needed to price one subscription for one billing period.
type Params struct {
	SubscriptionID string              // ID of the subscription being priced
	Price          decimal.Decimal     // Publication rate for a full period
	Period         types.BillingPeriod // The billing month

	StartDate time.Time  // First delivery date of the subscription
	EndDate   *time.Time // Last delivery date, nil when open ended

	// SuspensionStart and SuspensionEnd are set only for a SUSPENDED
	// subscription with both bounds recorded
	SuspensionStart *time.Time
	SuspensionEnd   *time.Time
}

// ParamsFor builds calculator input from a stored subscription
func ParamsFor(sub *subscription.Subscription, price decimal.Decimal, period types.BillingPeriod) Params {
	params := Params{
		SubscriptionID: sub.ID,
		Price:          price,
		Period:         period,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
	}
	if start, end, ok := sub.SuspensionWindow(); ok {
		params.SuspensionStart = &start
		params.SuspensionEnd = &end
	}
	return params
}

// Result is the priced subscription.
type Result struct {
	SubscriptionID string          `json:"subscription_id"`
	DaysInPeriod   int             `json:"days_in_period"`
	SuspendedDays  int             `json:"suspended_days"`
	ActiveDays     int             `json:"active_days"`
	Amount         decimal.Decimal `json:"amount"`

	// ServiceStart and ServiceEnd clip the subscription to the period.
	// They are informational and do not feed into Amount.
	ServiceStart time.Time `json:"service_start"`
	ServiceEnd   time.Time `json:"service_end"`
}
