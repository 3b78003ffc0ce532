package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/invoice"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *InvoiceServiceSuite) januaryRequest() dto.GenerateInvoicesRequest {
	return dto.GenerateInvoicesRequest{
		Month: lo.ToPtr(1),
		Year:  lo.ToPtr(2025),
	}
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_ProratesSuspension() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	sub := createTestSubscription(&s.BaseServiceTestSuite, c, p, date(2024, time.December, 1))

	sub.Status = types.SubscriptionStatusSuspended
	sub.SuspensionStartDate = lo.ToPtr(date(2025, time.January, 10))
	sub.SuspensionEndDate = lo.ToPtr(date(2025, time.January, 19))
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(1, resp.InvoicesGenerated)
	s.Equal(0, resp.InvoicesSkipped)
	s.Equal("1/2025", resp.Period)

	list, err := s.service.ListCustomerInvoices(s.GetContext(), c.ID)
	s.NoError(err)
	s.Require().Len(list.Invoices, 1)

	inv := list.Invoices[0].Invoice
	s.True(decimal.RequireFromString("210.00").Equal(inv.Total), "got %s", inv.Total)
	s.True(inv.Subtotal.Equal(inv.Total))
	s.True(inv.Tax.IsZero())
	s.Equal(types.InvoiceStatusIssued, inv.Status)
	s.Equal(date(2025, time.February, 15), inv.DueDate)
	s.Equal(date(2025, time.January, 1), inv.BillingPeriodStart)
	s.True(strings.HasPrefix(inv.InvoiceNumber, "INV-202501-"))
	s.Len(inv.InvoiceNumber, len("INV-202501-")+8)
	s.Empty(list.Invoices[0].Payments)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_SumsSubscriptionsPerCustomer() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Ravi", types.CustomerStatusActive)
	daily := createTestPublication(&s.BaseServiceTestSuite, "Daily Courier", "150")
	weekly := createTestPublication(&s.BaseServiceTestSuite, "Weekend Review", "45.50")
	createTestSubscription(&s.BaseServiceTestSuite, c, daily, date(2024, time.June, 1))
	createTestSubscription(&s.BaseServiceTestSuite, c, weekly, date(2024, time.June, 1))

	resp, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(1, resp.InvoicesGenerated)

	list, err := s.service.ListCustomerInvoices(s.GetContext(), c.ID)
	s.NoError(err)
	s.Require().Len(list.Invoices, 1)
	s.True(decimal.RequireFromString("195.50").Equal(list.Invoices[0].Total))
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_IsIdempotent() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Meera", types.CustomerStatusActive)
	p := createTestPublication(&s.BaseServiceTestSuite, "Evening Post", "120")
	createTestSubscription(&s.BaseServiceTestSuite, c, p, date(2024, time.March, 1))

	first, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(1, first.InvoicesGenerated)

	second, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(0, second.InvoicesGenerated)
	s.Equal(1, second.InvoicesSkipped)

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(1, count)

	// one reminder for the one invoice
	s.Len(listNotifications(&s.BaseServiceTestSuite, c.ID), 1)
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().InvoicesGenerated))
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().InvoicesSkipped))
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_RoundsSubtotalOnce() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Farah", types.CustomerStatusActive)
	for _, name := range []string{"Morning Herald", "Evening Post", "Daily Courier"} {
		p := createTestPublication(&s.BaseServiceTestSuite, name, "10")
		sub := createTestSubscription(&s.BaseServiceTestSuite, c, p, date(2024, time.December, 1))
		sub.Status = types.SubscriptionStatusSuspended
		sub.SuspensionStartDate = lo.ToPtr(date(2025, time.January, 5))
		sub.SuspensionEndDate = lo.ToPtr(date(2025, time.January, 5))
		s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))
	}

	_, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)

	list, err := s.service.ListCustomerInvoices(s.GetContext(), c.ID)
	s.NoError(err)
	s.Require().Len(list.Invoices, 1)

	// 3 x 10 x 30/31 is 29.032..., rounding each line first would give 29.04
	inv := list.Invoices[0]
	s.True(decimal.RequireFromString("29.03").Equal(inv.Total), "got %s", inv.Total)
	s.Require().Len(inv.LineItems, 3)
	for _, item := range inv.LineItems {
		s.Equal(30, item.ActiveDays)
		s.True(item.Amount.GreaterThan(decimal.RequireFromString("9.677")))
		s.True(item.Amount.LessThan(decimal.RequireFromString("9.678")))
	}
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_LostCreateRaceCountsAsSkip() {
	first := createTestCustomer(&s.BaseServiceTestSuite, "Meera", types.CustomerStatusActive)
	second := createTestCustomer(&s.BaseServiceTestSuite, "Vikram", types.CustomerStatusActive)
	p := createTestPublication(&s.BaseServiceTestSuite, "Evening Post", "120")
	createTestSubscription(&s.BaseServiceTestSuite, first, p, date(2024, time.March, 1))
	createTestSubscription(&s.BaseServiceTestSuite, second, p, date(2024, time.March, 1))

	// another run already invoiced the first customer
	_, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.NoError(s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore).Delete(s.GetContext(), s.invoiceFor(second.ID).ID))

	// the existence check misses the concurrent insert, so Create reports the clash
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.InvoiceRepo = &staleExistsInvoiceRepo{Repository: params.InvoiceRepo}
	racing := NewInvoiceService(params)

	resp, err := racing.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(1, resp.InvoicesGenerated)
	s.Equal(1, resp.InvoicesSkipped)

	for _, c := range []string{first.ID, second.ID} {
		n, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), &types.InvoiceFilter{
			QueryFilter: types.NewNoLimitQueryFilter(),
			CustomerID:  c,
		})
		s.NoError(err)
		s.Equal(1, n, "customer %s", c)
	}
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().InvoicesSkipped))
	s.Equal(0.0, promtestutil.ToFloat64(s.GetMetrics().InvoiceErrors))
}

func (s *InvoiceServiceSuite) invoiceFor(customerID string) *invoice.Invoice {
	items, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		CustomerID:  customerID,
	})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	return items[0]
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_DefaultsToCurrentMonth() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Kiran", types.CustomerStatusActive)
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	createTestSubscription(&s.BaseServiceTestSuite, c, p, date(2024, time.March, 1))

	s.GetClock().Set(time.Date(2025, time.March, 2, 8, 0, 0, 0, time.UTC))

	resp, err := s.service.GenerateMonthlyInvoices(s.GetContext(), dto.GenerateInvoicesRequest{})
	s.NoError(err)
	s.Equal("3/2025", resp.Period)
	s.Equal(1, resp.InvoicesGenerated)

	list, err := s.service.ListCustomerInvoices(s.GetContext(), c.ID)
	s.NoError(err)
	s.Require().Len(list.Invoices, 1)
	s.Equal(date(2025, time.April, 15), list.Invoices[0].DueDate)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_SkipsCustomersNotBillable() {
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	gone := createTestCustomer(&s.BaseServiceTestSuite, "Gone", types.CustomerStatusDiscontinued)
	createTestSubscription(&s.BaseServiceTestSuite, gone, p, date(2024, time.March, 1))

	resp, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(0, resp.InvoicesGenerated)
	s.Equal(1, resp.InvoicesSkipped)
	s.Empty(listNotifications(&s.BaseServiceTestSuite, gone.ID))
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_IgnoresCancelledAndFutureSubscriptions() {
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")

	cancelled := createTestCustomer(&s.BaseServiceTestSuite, "Cancelled", types.CustomerStatusActive)
	sub := createTestSubscription(&s.BaseServiceTestSuite, cancelled, p, date(2024, time.March, 1))
	sub.Status = types.SubscriptionStatusCancelled
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	future := createTestCustomer(&s.BaseServiceTestSuite, "Future", types.CustomerStatusActive)
	createTestSubscription(&s.BaseServiceTestSuite, future, p, date(2025, time.February, 1))

	resp, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(0, resp.InvoicesGenerated)
	s.Equal(0, resp.InvoicesSkipped)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_SendsPaymentReminder() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	createTestSubscription(&s.BaseServiceTestSuite, c, p, date(2024, time.December, 1))

	_, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)

	filter := types.NewNotificationFilter()
	filter.CustomerID = c.ID
	items, err := s.GetStores().NotificationRepo.List(s.GetContext(), filter)
	s.NoError(err)
	s.Require().Len(items, 1)

	n := items[0]
	s.Equal(types.NotificationTypePaymentReminder, n.Type)
	s.Equal(types.NotificationStatusPending, n.Status)
	s.Equal(c.UserID, n.UserID)
	s.Equal("Your monthly invoice for 1/2025 has been generated. Total amount: 310.00. Due date: Sat Feb 15 2025.", n.Content)

	msgs := s.GetPubSub().GetMessages(s.GetConfig().Notification.Topic)
	s.Require().Len(msgs, 1)
	s.Equal(n.ID, msgs[0].UUID)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_PublishFailureKeepsNotification() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	p := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	createTestSubscription(&s.BaseServiceTestSuite, c, p, date(2024, time.December, 1))

	s.GetPubSub().FailWith(ierr.NewError("broker down").Mark(ierr.ErrSystem))

	resp, err := s.service.GenerateMonthlyInvoices(s.GetContext(), s.januaryRequest())
	s.NoError(err)
	s.Equal(1, resp.InvoicesGenerated)
	s.Len(listNotifications(&s.BaseServiceTestSuite, c.ID), 1)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices_RejectsInvalidMonth() {
	_, err := s.service.GenerateMonthlyInvoices(s.GetContext(), dto.GenerateInvoicesRequest{
		Month: lo.ToPtr(13),
		Year:  lo.ToPtr(2025),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestListCustomerInvoices_NotFound() {
	_, err := s.service.ListCustomerInvoices(s.GetContext(), "missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListCustomerInvoices_NewestFirst() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	older := createTestInvoice(&s.BaseServiceTestSuite, c, 2024, time.November, "100")
	newer := createTestInvoice(&s.BaseServiceTestSuite, c, 2024, time.December, "100")

	list, err := s.service.ListCustomerInvoices(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal("Invoices retrieved successfully", list.Message)
	s.Equal(c.Name, list.Customer.Name)
	s.Require().Len(list.Invoices, 2)
	s.Equal(newer.ID, list.Invoices[0].ID)
	s.Equal(older.ID, list.Invoices[1].ID)
}

func (s *InvoiceServiceSuite) TestGetInvoice() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	inv := createTestInvoice(&s.BaseServiceTestSuite, c, 2024, time.December, "100")

	resp, err := s.service.GetInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(inv.InvoiceNumber, resp.InvoiceNumber)
	s.Empty(resp.Payments)

	_, err = s.service.GetInvoice(s.GetContext(), "missing")
	s.True(ierr.IsNotFound(err))
}

// staleExistsInvoiceRepo never sees existing invoices, like a run racing another
type staleExistsInvoiceRepo struct {
	invoice.Repository
}

func (r *staleExistsInvoiceRepo) ExistsForPeriod(context.Context, string, types.BillingPeriod) (bool, error) {
	return false, nil
}
