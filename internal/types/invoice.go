package types

import "time"

// InvoiceStatus is the settlement state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// An OVERDUE invoice can still be paid.
var invoiceTransitions = transitionTable[InvoiceStatus]{
	InvoiceStatusIssued:  {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	return validateEnum("invoice status", s, []InvoiceStatus{
		InvoiceStatusIssued,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	})
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return invoiceTransitions.allows(s, next)
}

func (s InvoiceStatus) TransitionTo(next InvoiceStatus) (InvoiceStatus, error) {
	return invoiceTransitions.transition("invoice", s, next)
}

// UnpaidInvoiceStatuses are the statuses that still count towards a customer's dues
var UnpaidInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusIssued,
	InvoiceStatusOverdue,
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	*QueryFilter
	CustomerID     string          `json:"customer_id,omitempty" form:"customer_id"`
	Statuses       []InvoiceStatus `json:"statuses,omitempty" form:"statuses"`
	IssuedFrom     *time.Time      `json:"issued_from,omitempty" form:"issued_from"`
	IssuedTo       *time.Time      `json:"issued_to,omitempty" form:"issued_to"`
	DueBefore      *time.Time      `json:"due_before,omitempty" form:"due_before"`
	PeriodStart    *time.Time      `json:"period_start,omitempty" form:"period_start"`
	PeriodEnd      *time.Time      `json:"period_end,omitempty" form:"period_end"`
	InvoiceNumbers []string        `json:"invoice_numbers,omitempty" form:"invoice_numbers"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
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
