package types

// CustomerStatus is the billing standing of a customer account
type CustomerStatus string

const (
	CustomerStatusActive       CustomerStatus = "ACTIVE"
	CustomerStatusSuspended    CustomerStatus = "SUSPENDED"
	CustomerStatusDiscontinued CustomerStatus = "DISCONTINUED"
)

// DISCONTINUED is terminal: nothing automatic brings a customer back.
var customerTransitions = transitionTable[CustomerStatus]{
	CustomerStatusActive:    {CustomerStatusSuspended, CustomerStatusDiscontinued},
	CustomerStatusSuspended: {CustomerStatusActive, CustomerStatusDiscontinued},
}

func (s CustomerStatus) String() string {
	return string(s)
}

func (s CustomerStatus) Validate() error {
	return validateEnum("customer status", s, []CustomerStatus{
		CustomerStatusActive,
		CustomerStatusSuspended,
		CustomerStatusDiscontinued,
	})
}

func (s CustomerStatus) CanTransitionTo(next CustomerStatus) bool {
	return customerTransitions.allows(s, next)
}

func (s CustomerStatus) TransitionTo(next CustomerStatus) (CustomerStatus, error) {
	return customerTransitions.transition("customer", s, next)
}

// IsBillable reports whether invoices are still generated for the customer
func (s CustomerStatus) IsBillable() bool {
	return s != CustomerStatusDiscontinued
}

// CustomerFilter narrows customer listings
type CustomerFilter struct {
	*QueryFilter
	Statuses    []CustomerStatus `json:"statuses,omitempty" form:"statuses"`
	CustomerIDs []string         `json:"customer_ids,omitempty" form:"customer_ids"`
	UserID      string           `json:"user_id,omitempty" form:"user_id"`
}

func NewCustomerFilter() *CustomerFilter {
	return &CustomerFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitCustomerFilter() *CustomerFilter {
	return &CustomerFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *CustomerFilter) Validate() error {
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
