package testutil

import (
	"context"

	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	cp := *p
	cp.TransactionID = clonePtr(p.TransactionID)
	cp.ChequeNumber = clonePtr(p.ChequeNumber)
	return &cp
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	var page types.BaseFilter
	if filter != nil {
		page = paginated(filter.QueryFilter)
	}
	items, err := s.InMemoryStore.List(ctx, page, paymentFilterFn(filter), func(i, j *payment.Payment) bool {
		return i.PaymentDate.After(j.PaymentDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	}), nil
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, paymentFilterFn(filter))
}

func paymentFilterFn(f *types.PaymentFilter) FilterFunc[*payment.Payment] {
	return func(_ context.Context, p *payment.Payment, _ interface{}) bool {
		if f == nil {
			return true
		}
		if f.CustomerID != "" && p.CustomerID != f.CustomerID {
			return false
		}
		if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, p.InvoiceID) {
			return false
		}
		if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, p.Status) {
			return false
		}
		if f.StartTime != nil && p.PaymentDate.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && p.PaymentDate.After(*f.EndTime) {
			return false
		}
		return true
	}
}
