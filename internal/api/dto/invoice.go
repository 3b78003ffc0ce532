package dto

import (
	"time"

	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/types"
	"github.com/naasdev/naas/internal/validator"
)

// GenerateInvoicesRequest selects the billing month. Both fields default to
// the current month.
type GenerateInvoicesRequest struct {
	Month *int `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Year  *int `json:"year,omitempty" validate:"omitempty,min=2000,max=9999"`
}

func (r *GenerateInvoicesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Period resolves the requested billing month against now
func (r *GenerateInvoicesRequest) Period(now time.Time) (types.BillingPeriod, error) {
	now = now.UTC()
	year, month := now.Year(), now.Month()
	if r.Year != nil {
		year = *r.Year
	}
	if r.Month != nil {
		month = time.Month(*r.Month)
	}
	return types.NewMonthlyBillingPeriod(year, month)
}

type GenerateInvoicesResponse struct {
	Message           string `json:"message"`
	Period            string `json:"period"`
	InvoicesGenerated int    `json:"invoices_generated"`
	InvoicesSkipped   int    `json:"invoices_skipped"`
}

type InvoiceResponse struct {
	*invoice.Invoice
	Payments []*payment.Payment `json:"payments"`
}

type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

type CustomerInvoicesResponse struct {
	Message  string             `json:"message"`
	Customer CustomerSummary    `json:"customer"`
	Invoices []*InvoiceResponse `json:"invoices"`
}

type ProcessOverdueResponse struct {
	Message               string `json:"message"`
	ProcessedCount        int    `json:"processed_count"`
	UpdatedCount          int    `json:"updated_count"`
	NotificationsCount    int    `json:"notifications_count"`
	DiscontinuedCustomers int    `json:"discontinued_customers"`
}
