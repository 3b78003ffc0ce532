package service

import (
	"context"
	"fmt"
	"time"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/domain/proration"
	"github.com/naasdev/naas/internal/domain/subscription"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/idempotency"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	longDateLayout = "Mon Jan 02 2006"
)

type InvoiceService interface {
	// GenerateMonthlyInvoices bills every billable customer once for the
	// requested month. Customers already invoiced for it are skipped.
	GenerateMonthlyInvoices(ctx context.Context, req dto.GenerateInvoicesRequest) (*dto.GenerateInvoicesResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	ListCustomerInvoices(ctx context.Context, customerID string) (*dto.CustomerInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
	idempotencyGenerator *idempotency.Generator
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams:        params,
		idempotencyGenerator: idempotency.NewGenerator(),
	}
}

func (s *invoiceService) GenerateMonthlyInvoices(ctx context.Context, req dto.GenerateInvoicesRequest) (*dto.GenerateInvoicesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	period, err := req.Period(now)
	if err != nil {
		return nil, err
	}

	subs, err := s.SubRepo.ListBillableForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	byCustomer := lo.GroupBy(subs, func(sub *subscription.Subscription) string {
		return sub.CustomerID
	})
	customerIDs := lo.Uniq(lo.Map(subs, func(sub *subscription.Subscription, _ int) string {
		return sub.CustomerID
	}))

	s.Logger.Infow("generating monthly invoices",
		"period", period.Label(),
		"customers", len(customerIDs),
		"subscriptions", len(subs),
	)

	resp := &dto.GenerateInvoicesResponse{
		Message: "Monthly invoices generated successfully",
		Period:  period.Label(),
	}

	for _, customerID := range customerIDs {
		inv, c, err := s.invoiceCustomer(ctx, customerID, byCustomer[customerID], period, now)
		if err != nil {
			s.Metrics.InvoiceErrors.Inc()
			s.Logger.Errorw("failed to generate invoice",
				"customer_id", customerID,
				"period", period.Label(),
				"error", err,
			)
			return nil, err
		}
		if inv == nil {
			resp.InvoicesSkipped++
			s.Metrics.InvoicesSkipped.Inc()
			continue
		}

		resp.InvoicesGenerated++
		s.Metrics.InvoicesGenerated.Inc()
		f, _ := inv.Total.Float64()
		s.Metrics.InvoicedAmount.Add(f)

		s.notify(ctx, c, types.NotificationTypePaymentReminder,
			fmt.Sprintf("Your monthly invoice for %s has been generated. Total amount: %s. Due date: %s.",
				period.Label(), inv.Total.StringFixed(2), inv.DueDate.Format(longDateLayout)))
	}

	s.Logger.Infow("monthly invoice run finished",
		"period", period.Label(),
		"generated", resp.InvoicesGenerated,
		"skipped", resp.InvoicesSkipped,
	)
	return resp, nil
}

// invoiceCustomer creates the customer's invoice for the period in its own
// transaction. It returns a nil invoice when there is nothing to do.
func (s *invoiceService) invoiceCustomer(
	ctx context.Context,
	customerID string,
	subs []*subscription.Subscription,
	period types.BillingPeriod,
	now time.Time,
) (*invoice.Invoice, *customer.Customer, error) {
	c, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if !c.Status.IsBillable() {
		return nil, c, nil
	}

	exists, err := s.InvoiceRepo.ExistsForPeriod(ctx, customerID, period)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, c, nil
	}

	inv, err := s.buildInvoice(ctx, c, subs, period, now)
	if err != nil {
		return nil, nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		return s.InvoiceRepo.Create(txCtx, inv)
	})
	if ierr.IsAlreadyExists(err) {
		// a concurrent run got there first
		s.Logger.Infow("invoice already exists for period",
			"customer_id", customerID,
			"period", period.Label(),
		)
		return nil, c, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return inv, c, nil
}

func (s *invoiceService) buildInvoice(
	ctx context.Context,
	c *customer.Customer,
	subs []*subscription.Subscription,
	period types.BillingPeriod,
	now time.Time,
) (*invoice.Invoice, error) {
	publications := NewPublicationService(s.ServiceParams)

	invoiceID := types.GenerateUUID()
	items := make([]*invoice.LineItem, 0, len(subs))
	subtotal := decimal.Zero

	for _, sub := range subs {
		pub, err := publications.GetPublication(ctx, sub.PublicationID)
		if err != nil {
			return nil, err
		}

		result := s.Calculator.Calculate(proration.ParamsFor(sub, pub.Price, period))
		// line amounts keep full precision, only the invoice subtotal is rounded
		amount := result.Amount
		subtotal = subtotal.Add(amount)

		items = append(items, &invoice.LineItem{
			ID:              types.GenerateUUID(),
			InvoiceID:       invoiceID,
			SubscriptionID:  sub.ID,
			PublicationID:   pub.ID,
			PublicationName: pub.Name,
			UnitPrice:       pub.Price,
			DaysInPeriod:    result.DaysInPeriod,
			ActiveDays:      result.ActiveDays,
			Amount:          amount,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		})
	}
	subtotal = subtotal.Round(2)

	idempotencyKey := s.idempotencyGenerator.GenerateKey(idempotency.ScopeMonthlyInvoice, map[string]interface{}{
		"customer_id":  c.ID,
		"period_start": period.Start,
		"period_end":   period.End,
	})

	tax := decimal.Zero
	return &invoice.Invoice{
		ID:                 invoiceID,
		CustomerID:         c.ID,
		InvoiceNumber:      types.GenerateInvoiceNumber(period.Year(), period.Month()),
		IdempotencyKey:     idempotencyKey,
		IssueDate:          now,
		DueDate:            period.DueDate(s.Config.Billing.InvoiceDueDay),
		Subtotal:           subtotal,
		Tax:                tax,
		Total:              subtotal.Add(tax),
		Status:             types.InvoiceStatusIssued,
		BillingPeriodStart: period.Start,
		BillingPeriodEnd:   period.End,
		LineItems:          items,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, &types.PaymentFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		InvoiceIDs:  []string{inv.ID},
	})
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv, Payments: payments}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.withPayments(ctx, invoices)
	if err != nil {
		return nil, err
	}
	resp := types.NewListResponse(items, total, filter)
	return &resp, nil
}

// ListCustomerInvoices returns every invoice of the customer, newest first,
// with the payments made against each
func (s *invoiceService) ListCustomerInvoices(ctx context.Context, customerID string) (*dto.CustomerInvoicesResponse, error) {
	c, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	filter := types.NewNoLimitInvoiceFilter()
	filter.CustomerID = customerID
	filter.Sort = lo.ToPtr("issue_date")

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.withPayments(ctx, invoices)
	if err != nil {
		return nil, err
	}

	return &dto.CustomerInvoicesResponse{
		Message: "Invoices retrieved successfully",
		Customer: dto.CustomerSummary{
			ID:             c.ID,
			Name:           c.Name,
			OutstandingDue: c.OutstandingDue,
		},
		Invoices: items,
	}, nil
}

func (s *invoiceService) withPayments(ctx context.Context, invoices []*invoice.Invoice) ([]*dto.InvoiceResponse, error) {
	if len(invoices) == 0 {
		return []*dto.InvoiceResponse{}, nil
	}

	invoiceIDs := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string {
		return inv.ID
	})
	payments, err := s.PaymentRepo.List(ctx, &types.PaymentFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		InvoiceIDs:  invoiceIDs,
	})
	if err != nil {
		return nil, err
	}
	byInvoice := lo.GroupBy(payments, func(p *payment.Payment) string {
		return p.InvoiceID
	})

	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return &dto.InvoiceResponse{
			Invoice:  inv,
			Payments: lo.Ternary(byInvoice[inv.ID] != nil, byInvoice[inv.ID], []*payment.Payment{}),
		}
	}), nil
}
