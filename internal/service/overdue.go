package service

import (
	"context"
	"fmt"
	"time"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

type OverdueService interface {
	// ProcessOverdueInvoices marks ISSUED invoices past their due date as
	// OVERDUE and escalates their customers
	ProcessOverdueInvoices(ctx context.Context) (*dto.ProcessOverdueResponse, error)
}

type overdueService struct {
	ServiceParams
}

func NewOverdueService(params ServiceParams) OverdueService {
	return &overdueService{
		ServiceParams: params,
	}
}

// escalation is what the sweep decided for the owner of one invoice
type escalation int

const (
	escalationNone escalation = iota
	escalationReminder
	escalationDiscontinue
)

func (s *overdueService) ProcessOverdueInvoices(ctx context.Context) (*dto.ProcessOverdueResponse, error) {
	now := s.Clock.Now()

	invoices, err := s.InvoiceRepo.ListIssuedPastDue(ctx, now)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("processing overdue invoices", "count", len(invoices), "now", now)

	resp := &dto.ProcessOverdueResponse{
		Message:        "Overdue invoices processed successfully",
		ProcessedCount: len(invoices),
	}

	for _, candidate := range invoices {
		inv, c, outcome, err := s.markOverdue(ctx, candidate.ID, now)
		if err != nil {
			s.Logger.Errorw("failed to process overdue invoice",
				"invoice_id", candidate.ID,
				"customer_id", candidate.CustomerID,
				"error", err,
			)
			return nil, err
		}
		if inv == nil {
			continue
		}

		resp.UpdatedCount++
		s.Metrics.InvoicesMarkedOverdue.Inc()

		switch outcome {
		case escalationDiscontinue:
			resp.DiscontinuedCustomers++
			s.Metrics.CustomersDiscontinued.Inc()
			if s.notify(ctx, c, types.NotificationTypePaymentReminder, fmt.Sprintf(
				"Your subscription has been discontinued due to outstanding dues for more than %d months. "+
					"Please clear your dues to reactivate your subscription.",
				s.Config.Billing.DiscontinueAfterMonths)) {
				resp.NotificationsCount++
			}
		case escalationReminder:
			if s.notify(ctx, c, types.NotificationTypePaymentReminder, fmt.Sprintf(
				"Reminder: Your invoice %s is overdue. "+
					"Please make the payment at your earliest convenience to avoid service disruption.",
				inv.InvoiceNumber)) {
				resp.NotificationsCount++
				s.Metrics.RemindersSent.Inc()
			}
		}
	}

	s.Logger.Infow("overdue sweep finished",
		"processed", resp.ProcessedCount,
		"updated", resp.UpdatedCount,
		"notifications", resp.NotificationsCount,
		"discontinued", resp.DiscontinuedCustomers,
	)
	return resp, nil
}

// markOverdue flags one invoice and updates its customer in a single
// transaction. A nil invoice means another run already handled it.
func (s *overdueService) markOverdue(ctx context.Context, invoiceID string, now time.Time) (*invoice.Invoice, *customer.Customer, escalation, error) {
	var (
		inv     *invoice.Invoice
		c       *customer.Customer
		outcome escalation
	)

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		inv, err = s.InvoiceRepo.GetForUpdate(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status != types.InvoiceStatusIssued || !inv.IsPastDue(now) {
			inv = nil
			return nil
		}

		if err := inv.MarkOverdue(); err != nil {
			return err
		}
		inv.Touch(txCtx)
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		c, err = s.CustomerRepo.GetForUpdate(txCtx, inv.CustomerID)
		if err != nil {
			return err
		}
		c.MarkOverdueSince(inv.DueDate)

		unpaid, err := s.InvoiceRepo.ListUnpaidByCustomer(txCtx, c.ID)
		if err != nil {
			return err
		}
		c.OutstandingDue = invoice.SumTotals(lo.Filter(unpaid, func(i *invoice.Invoice, _ int) bool {
			return i.Status == types.InvoiceStatusOverdue
		}))

		outcome, err = s.escalate(txCtx, c, now)
		if err != nil {
			return err
		}

		c.Touch(txCtx)
		return s.CustomerRepo.Update(txCtx, c)
	})
	if err != nil {
		return nil, nil, escalationNone, err
	}
	return inv, c, outcome, nil
}

// escalate discontinues a customer whose dues reach the configured age and
// cancels their ACTIVE subscriptions. Younger dues earn a reminder.
// Customers already discontinued are left alone.
func (s *overdueService) escalate(ctx context.Context, c *customer.Customer, now time.Time) (escalation, error) {
	if c.IsDiscontinued() {
		return escalationNone, nil
	}

	months := c.MonthsOverdue(now)
	if months < s.Config.Billing.DiscontinueAfterMonths {
		return escalationReminder, nil
	}

	if err := c.TransitionTo(types.CustomerStatusDiscontinued); err != nil {
		return escalationNone, err
	}

	filter := types.NewNoLimitSubscriptionFilter()
	filter.CustomerID = c.ID
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusActive}

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return escalationNone, err
	}
	for _, sub := range subs {
		if err := sub.Cancel(now, now); err != nil {
			return escalationNone, err
		}
		sub.Touch(ctx)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return escalationNone, err
		}
	}

	s.Logger.Infow("discontinued customer",
		"customer_id", c.ID,
		"due_since", c.DueSince,
		"months_overdue", months,
		"cancelled_subscriptions", len(subs),
	)
	return escalationDiscontinue, nil
}
