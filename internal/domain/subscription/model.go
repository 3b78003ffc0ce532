package subscription

import (
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
)

// Subscription ties one customer to one publication
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// CustomerID is the subscriber
	CustomerID string `db:"customer_id" json:"customer_id"`

	// PublicationID is the subscribed publication
	PublicationID string `db:"publication_id" json:"publication_id"`

	// StartDate is the first delivery date
	StartDate time.Time `db:"start_date" json:"start_date"`

	// EndDate is the last delivery date, always set once cancelled
	EndDate *time.Time `db:"end_date" json:"end_date,omitempty"`

	// Status is the lifecycle state of the subscription
	Status types.SubscriptionStatus `db:"status" json:"status"`

	// SuspensionStartDate and SuspensionEndDate bound a delivery pause.
	// They only mean something while the status is SUSPENDED.
	SuspensionStartDate *time.Time `db:"suspension_start_date" json:"suspension_start_date,omitempty"`
	SuspensionEndDate   *time.Time `db:"suspension_end_date" json:"suspension_end_date,omitempty"`

	// ModificationDate is when the subscription last changed on request of the customer
	ModificationDate *time.Time `db:"modification_date" json:"modification_date,omitempty"`

	// CancellationDate is when the subscription was cancelled
	CancellationDate *time.Time `db:"cancellation_date" json:"cancellation_date,omitempty"`

	// BillingCycle is how often the subscriber settles
	BillingCycle types.BillingCycle `db:"billing_cycle" json:"billing_cycle"`

	types.BaseModel
}

// SuspensionWindow returns the suspension window when the subscription is
// SUSPENDED and both bounds are set
func (s *Subscription) SuspensionWindow() (start, end time.Time, ok bool) {
	if s.Status != types.SubscriptionStatusSuspended || s.SuspensionStartDate == nil || s.SuspensionEndDate == nil {
		return time.Time{}, time.Time{}, false
	}
	return *s.SuspensionStartDate, *s.SuspensionEndDate, true
}

// Suspend pauses delivery between from and to, inclusive
func (s *Subscription) Suspend(from, to, now time.Time) error {
	if to.Before(from) {
		return ierr.NewError("suspension end before start").
			WithHint("Suspension end date must not be before the start date").
			WithReportableDetails(map[string]any{
				"suspension_start_date": from,
				"suspension_end_date":   to,
			}).
			Mark(ierr.ErrValidation)
	}
	status, err := s.Status.TransitionTo(types.SubscriptionStatusSuspended)
	if err != nil {
		return err
	}
	from, to = types.DateOf(from), types.DateOf(to)
	s.Status = status
	s.SuspensionStartDate = &from
	s.SuspensionEndDate = &to
	s.ModificationDate = &now
	return nil
}

// Resume lifts a suspension and forgets its window
func (s *Subscription) Resume(now time.Time) error {
	status, err := s.Status.TransitionTo(types.SubscriptionStatusActive)
	if err != nil {
		return err
	}
	s.Status = status
	s.SuspensionStartDate = nil
	s.SuspensionEndDate = nil
	s.ModificationDate = &now
	return nil
}

// Cancel stops the subscription. Delivery continues until endDate.
func (s *Subscription) Cancel(now, endDate time.Time) error {
	status, err := s.Status.TransitionTo(types.SubscriptionStatusCancelled)
	if err != nil {
		return err
	}
	s.Status = status
	s.CancellationDate = &now
	s.EndDate = &endDate
	return nil
}

// ChangeBillingCycle switches how often the subscriber settles
func (s *Subscription) ChangeBillingCycle(cycle types.BillingCycle, now time.Time) error {
	if err := cycle.Validate(); err != nil {
		return err
	}
	if s.Status.IsTerminal() {
		return ierr.NewError("subscription is not modifiable").
			WithHintf("A %s subscription cannot be modified", s.Status).
			Mark(ierr.ErrInvalidOperation)
	}
	s.BillingCycle = cycle
	s.ModificationDate = &now
	return nil
}
