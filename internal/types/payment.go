package types

// PaymentStatus is the state of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

var paymentTransitions = transitionTable[PaymentStatus]{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	return validateEnum("payment status", s, []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	})
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return paymentTransitions.allows(s, next)
}

func (s PaymentStatus) TransitionTo(next PaymentStatus) (PaymentStatus, error) {
	return paymentTransitions.transition("payment", s, next)
}

// PaymentMethod is how the customer settled an invoice
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCheque     PaymentMethod = "CHEQUE"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodNetBanking PaymentMethod = "NET_BANKING"
	PaymentMethodEWallet    PaymentMethod = "E_WALLET"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	return validateEnum("payment method", m, []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodCheque,
		PaymentMethodCreditCard,
		PaymentMethodDebitCard,
		PaymentMethodUPI,
		PaymentMethodNetBanking,
		PaymentMethodEWallet,
	})
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	*QueryFilter
	TimeRangeFilter
	InvoiceIDs []string        `json:"invoice_ids,omitempty" form:"invoice_ids"`
	CustomerID string          `json:"customer_id,omitempty" form:"customer_id"`
	Statuses   []PaymentStatus `json:"statuses,omitempty" form:"statuses"`
}

func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *PaymentFilter) Validate() error {
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
