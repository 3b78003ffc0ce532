package types

import "time"

// DeliveryStatus tracks one scheduled drop of a publication at a customer
type DeliveryStatus string

const (
	DeliveryStatusScheduled DeliveryStatus = "SCHEDULED"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusMissed    DeliveryStatus = "MISSED"
	DeliveryStatusSuspended DeliveryStatus = "SUSPENDED"
)

// a missed drop can still be made later the same day
var deliveryTransitions = transitionTable[DeliveryStatus]{
	DeliveryStatusScheduled: {DeliveryStatusDelivered, DeliveryStatusMissed, DeliveryStatusSuspended},
	DeliveryStatusMissed:    {DeliveryStatusDelivered},
	DeliveryStatusSuspended: {DeliveryStatusScheduled},
}

func (s DeliveryStatus) String() string {
	return string(s)
}

func (s DeliveryStatus) Validate() error {
	return validateEnum("delivery status", s, []DeliveryStatus{
		DeliveryStatusScheduled,
		DeliveryStatusDelivered,
		DeliveryStatusMissed,
		DeliveryStatusSuspended,
	})
}

func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	return deliveryTransitions.allows(s, next)
}

func (s DeliveryStatus) TransitionTo(next DeliveryStatus) (DeliveryStatus, error) {
	return deliveryTransitions.transition("delivery", s, next)
}

// DeliversOn reports whether an issue of this frequency goes out on day for
// a subscription that started on start. Weekly and biweekly issues go out on
// Sundays, biweekly ones every other Sunday counted from the start date, and
// monthly issues on the 1st.
func (f PublicationFrequency) DeliversOn(start, day time.Time) bool {
	day = DateOf(day)
	switch f {
	case PublicationFrequencyDaily:
		return true
	case PublicationFrequencyWeekly:
		return day.Weekday() == time.Sunday
	case PublicationFrequencyBiweekly:
		if day.Weekday() != time.Sunday {
			return false
		}
		days := int(day.Sub(DateOf(start)).Hours() / 24)
		if days < 0 {
			days = -days
		}
		return (days/7)%2 == 0
	case PublicationFrequencyMonthly:
		return day.Day() == 1
	default:
		return false
	}
}

// DeliveryScheduleFilter narrows delivery schedule listings
type DeliveryScheduleFilter struct {
	*QueryFilter
	TimeRangeFilter
	PersonnelID     string           `json:"personnel_id,omitempty" form:"personnel_id"`
	SubscriptionIDs []string         `json:"subscription_ids,omitempty" form:"subscription_ids"`
	Statuses        []DeliveryStatus `json:"statuses,omitempty" form:"statuses"`
}

func NewNoLimitDeliveryScheduleFilter() *DeliveryScheduleFilter {
	return &DeliveryScheduleFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *DeliveryScheduleFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if err := f.TimeRangeFilter.Validate(); err != nil {
		return err
	}
	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DeliveryPersonnelFilter narrows delivery personnel listings
type DeliveryPersonnelFilter struct {
	*QueryFilter
	ActiveOnly bool `json:"active_only,omitempty" form:"active_only"`
}

func NewDeliveryPersonnelFilter() *DeliveryPersonnelFilter {
	return &DeliveryPersonnelFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *DeliveryPersonnelFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
