package payment

import (
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// Payment records the settlement of exactly one invoice. It is never modified after creation.
type Payment struct {
	// Unique identifier for this payment
	ID string `db:"id" json:"id"`
	// The invoice this payment settles
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	// The customer that owns the invoice
	CustomerID string `db:"customer_id" json:"customer_id"`
	// The amount paid, always equal to the invoice total
	Amount decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`
	// When the payment was received
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`
	// How the customer paid
	PaymentMethod types.PaymentMethod `db:"payment_method" json:"payment_method"`
	// The state of the payment
	Status types.PaymentStatus `db:"status" json:"status"`
	// Human readable receipt number ex RCPT-2025-01-20-3c2a1b0f
	ReceiptNumber string `db:"receipt_number" json:"receipt_number"`
	// Reference from the payment provider for card, UPI and bank payments (optional)
	TransactionID *string `db:"transaction_id" json:"transaction_id,omitempty"`
	// Cheque number, required when paying by cheque (optional)
	ChequeNumber *string `db:"cheque_number" json:"cheque_number,omitempty"`

	types.BaseModel
}

// Validate checks the payment before it is persisted
func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if err := p.PaymentMethod.Validate(); err != nil {
		return err
	}
	if p.PaymentMethod == types.PaymentMethodCheque && (p.ChequeNumber == nil || *p.ChequeNumber == "") {
		return ierr.NewError("cheque_number is required for cheque payments").
			WithHint("Please provide the cheque number").
			Mark(ierr.ErrValidation)
	}
	return p.Status.Validate()
}
