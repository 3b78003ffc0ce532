package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/naasdev/naas/internal/domain/invoice"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository. Like the invoices
// table it rejects a second invoice for the same customer and period.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	mu sync.Mutex
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	cp.LineItems = lo.Map(inv.LineItems, func(item *invoice.LineItem, _ int) *invoice.LineItem {
		li := *item
		return &li
	})
	return &cp
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clash, err := s.InMemoryStore.Count(ctx, nil, func(_ context.Context, existing *invoice.Invoice, _ interface{}) bool {
		samePeriod := existing.CustomerID == inv.CustomerID &&
			existing.BillingPeriodStart.Equal(inv.BillingPeriodStart) &&
			existing.BillingPeriodEnd.Equal(inv.BillingPeriodEnd)
		return samePeriod ||
			existing.InvoiceNumber == inv.InvoiceNumber ||
			existing.IdempotencyKey == inv.IdempotencyKey
	})
	if err != nil {
		return err
	}
	if clash > 0 {
		return ierr.NewError("invoice already exists").
			WithHint("An invoice already exists for this customer and billing period").
			WithReportableDetails(map[string]any{
				"customer_id":    inv.CustomerID,
				"invoice_number": inv.InvoiceNumber,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	for _, item := range inv.LineItems {
		item.InvoiceID = inv.ID
	}
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.Get(ctx, id)
}

// Update only persists status and due date, line items are immutable
func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	existing, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return err
	}
	updated := copyInvoice(existing)
	updated.Status = inv.Status
	updated.DueDate = inv.DueDate
	updated.BaseModel = inv.BaseModel
	return s.InMemoryStore.Update(ctx, inv.ID, updated)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, invoiceFilterFn(filter), invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return copyInvoices(items), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, invoiceFilterFn(filter))
}

func (s *InMemoryInvoiceStore) ExistsForPeriod(ctx context.Context, customerID string, period types.BillingPeriod) (bool, error) {
	n, err := s.Count(ctx, &types.InvoiceFilter{
		CustomerID:  customerID,
		PeriodStart: &period.Start,
		PeriodEnd:   &period.End,
	})
	return n > 0, err
}

func (s *InMemoryInvoiceStore) ListIssuedPastDue(ctx context.Context, now time.Time) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.Status == types.InvoiceStatusIssued && inv.IsPastDue(now)
	}, func(i, j *invoice.Invoice) bool {
		if i.DueDate.Equal(j.DueDate) {
			return i.InvoiceNumber < j.InvoiceNumber
		}
		return i.DueDate.Before(j.DueDate)
	})
	if err != nil {
		return nil, err
	}
	return copyInvoices(items), nil
}

func (s *InMemoryInvoiceStore) ListUnpaidByCustomer(ctx context.Context, customerID string) ([]*invoice.Invoice, error) {
	return s.List(ctx, &types.InvoiceFilter{
		CustomerID: customerID,
		Statuses:   types.UnpaidInvoiceStatuses,
	})
}

func copyInvoices(items []*invoice.Invoice) []*invoice.Invoice {
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	})
}

func invoiceFilterFn(f *types.InvoiceFilter) FilterFunc[*invoice.Invoice] {
	return func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		if f == nil {
			return true
		}
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			return false
		}
		if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, inv.Status) {
			return false
		}
		if len(f.InvoiceNumbers) > 0 && !lo.Contains(f.InvoiceNumbers, inv.InvoiceNumber) {
			return false
		}
		if f.IssuedFrom != nil && inv.IssueDate.Before(*f.IssuedFrom) {
			return false
		}
		if f.IssuedTo != nil && inv.IssueDate.After(*f.IssuedTo) {
			return false
		}
		if f.DueBefore != nil && !inv.DueDate.Before(*f.DueBefore) {
			return false
		}
		if f.PeriodStart != nil && !inv.BillingPeriodStart.Equal(*f.PeriodStart) {
			return false
		}
		if f.PeriodEnd != nil && !inv.BillingPeriodEnd.Equal(*f.PeriodEnd) {
			return false
		}
		return true
	}
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i.IssueDate.Equal(j.IssueDate) {
		return i.InvoiceNumber > j.InvoiceNumber
	}
	return i.IssueDate.After(j.IssueDate)
}
