package dto

import (
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
	"github.com/shopspring/decimal"
)

// ProcessPaymentRequest settles one invoice. The amount may be sent as a
// JSON number or a string.
type ProcessPaymentRequest struct {
	InvoiceID     string              `json:"invoice_id" validate:"required"`
	Amount        decimal.Decimal     `json:"amount" validate:"required,gt=0" swaggertype:"string"`
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	ChequeNumber  *string             `json:"cheque_number,omitempty"`
	TransactionID *string             `json:"transaction_id,omitempty"`
}

func (r *ProcessPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.PaymentMethod.Validate()
}

type ProcessPaymentResponse struct {
	Message       string           `json:"message"`
	Payment       *payment.Payment `json:"payment"`
	ReceiptNumber string           `json:"receipt_number"`
}

type PaymentResponse struct {
	*payment.Payment
}

type ListPaymentsResponse = types.ListResponse[*PaymentResponse]
