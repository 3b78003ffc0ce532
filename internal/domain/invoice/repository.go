package invoice

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/types"
)

// Repository defines the interface for invoice data access
type Repository interface {
	// Create stores the invoice with its line items. It fails with
	// ErrAlreadyExists when the customer already has an invoice for the period.
	Create(ctx context.Context, invoice *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	// GetForUpdate locks the row for the rest of the surrounding transaction
	GetForUpdate(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, invoice *Invoice) error
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ExistsForPeriod reports whether the customer already has an invoice for the period
	ExistsForPeriod(ctx context.Context, customerID string, period types.BillingPeriod) (bool, error)

	// ListIssuedPastDue returns ISSUED invoices whose due date is before now, oldest due first
	ListIssuedPastDue(ctx context.Context, now time.Time) ([]*Invoice, error)

	// ListUnpaidByCustomer returns the customer's ISSUED and OVERDUE invoices
	ListUnpaidByCustomer(ctx context.Context, customerID string) ([]*Invoice, error)
}
