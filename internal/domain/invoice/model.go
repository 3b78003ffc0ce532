package invoice

import (
	"time"

	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice bills one customer for one calendar month
type Invoice struct {
	// ID is the unique identifier for the invoice
	ID string `db:"id" json:"id"`

	// CustomerID is the billed customer
	CustomerID string `db:"customer_id" json:"customer_id"`

	// InvoiceNumber is the human readable number printed on the invoice ex INV-202501-9f86d081
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`

	// IdempotencyKey is derived from the customer and billing period
	IdempotencyKey string `db:"idempotency_key" json:"-"`

	// IssueDate is when the invoice was generated
	IssueDate time.Time `db:"issue_date" json:"issue_date"`

	// DueDate is when the invoice falls due
	DueDate time.Time `db:"due_date" json:"due_date"`

	Subtotal decimal.Decimal `db:"subtotal" json:"subtotal" swaggertype:"string"`
	Tax      decimal.Decimal `db:"tax" json:"tax" swaggertype:"string"`
	Total    decimal.Decimal `db:"total" json:"total" swaggertype:"string"`

	// Status is the settlement state of the invoice
	Status types.InvoiceStatus `db:"status" json:"status"`

	BillingPeriodStart time.Time `db:"billing_period_start" json:"billing_period_start"`
	BillingPeriodEnd   time.Time `db:"billing_period_end" json:"billing_period_end"`

	// LineItems break the subtotal down per subscription
	LineItems []*LineItem `db:"-" json:"line_items,omitempty"`

	types.BaseModel
}

// Period returns the billing period the invoice covers
func (i *Invoice) Period() types.BillingPeriod {
	return types.BillingPeriod{Start: i.BillingPeriodStart, End: i.BillingPeriodEnd}
}

// IsPastDue reports whether the due date is strictly before now
func (i *Invoice) IsPastDue(now time.Time) bool {
	return i.DueDate.Before(now)
}

// IsUnpaid reports whether the invoice still counts towards the customer's dues
func (i *Invoice) IsUnpaid() bool {
	return i.Status == types.InvoiceStatusIssued || i.Status == types.InvoiceStatusOverdue
}

// MarkPaid settles the invoice
func (i *Invoice) MarkPaid() error {
	return i.transitionTo(types.InvoiceStatusPaid)
}

// MarkOverdue flags an ISSUED invoice past its due date
func (i *Invoice) MarkOverdue() error {
	return i.transitionTo(types.InvoiceStatusOverdue)
}

func (i *Invoice) transitionTo(next types.InvoiceStatus) error {
	status, err := i.Status.TransitionTo(next)
	if err != nil {
		return err
	}
	i.Status = status
	return nil
}

// SumTotals adds up the totals of the given invoices
func SumTotals(invoices []*Invoice) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.Total)
	}
	return sum
}
