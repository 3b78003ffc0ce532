package types

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

var subscriptionTransitions = transitionTable[SubscriptionStatus]{
	SubscriptionStatusActive: {
		SubscriptionStatusSuspended,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	},
	SubscriptionStatusSuspended: {
		SubscriptionStatusActive,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	},
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	return validateEnum("subscription status", s, []SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusSuspended,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	})
}

// IsTerminal reports whether the subscription can no longer change
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	return subscriptionTransitions.allows(s, next)
}

func (s SubscriptionStatus) TransitionTo(next SubscriptionStatus) (SubscriptionStatus, error) {
	return subscriptionTransitions.transition("subscription", s, next)
}

// BillableSubscriptionStatuses are the statuses picked up by monthly invoicing
var BillableSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusSuspended,
}

// BillingCycle is how often the subscriber is expected to settle
type BillingCycle string

const (
	BillingCycleMonthly    BillingCycle = "MONTHLY"
	BillingCycleQuarterly  BillingCycle = "QUARTERLY"
	BillingCycleBiannually BillingCycle = "BIANNUALLY"
	BillingCycleAnnually   BillingCycle = "ANNUALLY"
)

func (c BillingCycle) String() string {
	return string(c)
}

func (c BillingCycle) Validate() error {
	return validateEnum("billing cycle", c, []BillingCycle{
		BillingCycleMonthly,
		BillingCycleQuarterly,
		BillingCycleBiannually,
		BillingCycleAnnually,
	})
}

// SubscriptionFilter narrows subscription listings
type SubscriptionFilter struct {
	*QueryFilter
	CustomerID    string               `json:"customer_id,omitempty" form:"customer_id"`
	PublicationID string               `json:"publication_id,omitempty" form:"publication_id"`
	Statuses      []SubscriptionStatus `json:"statuses,omitempty" form:"statuses"`
}

func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *SubscriptionFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
