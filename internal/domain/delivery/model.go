package delivery

import (
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the percentage paid on delivered value when none is given
var DefaultCommissionRate = decimal.RequireFromString("2.50")

// Personnel is a delivery person who works a round
type Personnel struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone"`
	Address     string    `db:"address" json:"address"`
	JoiningDate time.Time `db:"joining_date" json:"joining_date"`
	IsActive    bool      `db:"is_active" json:"is_active"`

	// CommissionRate is a percentage of the value delivered, ex 2.50
	CommissionRate decimal.Decimal `db:"commission_rate" json:"commission_rate" swaggertype:"string"`

	types.BaseModel
}

// Validate checks the personnel record before it is persisted
func (p *Personnel) Validate() error {
	if p.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide the delivery person's name").
			Mark(ierr.ErrValidation)
	}
	if p.Phone == "" {
		return ierr.NewError("phone is required").
			WithHint("Please provide a contact phone number").
			Mark(ierr.ErrValidation)
	}
	if p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return ierr.NewError("invalid commission rate").
			WithHint("Commission rate must be between 0 and 99.99 percent").
			WithReportableDetails(map[string]any{
				"commission_rate": p.CommissionRate.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Commission returns the share of value owed at the personnel's rate, rounded to cents
func (p *Personnel) Commission(value decimal.Decimal) decimal.Decimal {
	return value.Mul(p.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
}

// Schedule is one publication drop for one subscription on one day
type Schedule struct {
	ID             string               `db:"id" json:"id"`
	Date           time.Time            `db:"date" json:"date"`
	Status         types.DeliveryStatus `db:"status" json:"status"`
	SubscriptionID string               `db:"subscription_id" json:"subscription_id"`
	PersonnelID    string               `db:"personnel_id" json:"personnel_id"`

	// DeliveryTime is set once the drop is made
	DeliveryTime *time.Time `db:"delivery_time" json:"delivery_time,omitempty"`
	Notes        string     `db:"notes" json:"notes"`

	types.BaseModel
}

// UpdateStatus moves the schedule to next. A delivered schedule records at,
// or now when at is nil.
func (s *Schedule) UpdateStatus(next types.DeliveryStatus, at *time.Time, now time.Time) error {
	if err := next.Validate(); err != nil {
		return err
	}
	status, err := s.Status.TransitionTo(next)
	if err != nil {
		return err
	}
	s.Status = status

	if status == types.DeliveryStatusDelivered {
		t := now
		if at != nil {
			t = *at
		}
		t = t.UTC()
		s.DeliveryTime = &t
	}
	return nil
}
