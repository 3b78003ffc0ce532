package service

import (
	"testing"
	"time"

	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OverdueServiceSuite struct {
	testutil.BaseServiceTestSuite
	service OverdueService
}

func TestOverdueService(t *testing.T) {
	suite.Run(t, new(OverdueServiceSuite))
}

func (s *OverdueServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewOverdueService(newTestServiceParams(&s.BaseServiceTestSuite))
}

// invoiceDue stores an ISSUED invoice for the month falling due on dueDate
func (s *OverdueServiceSuite) invoiceDue(c *customer.Customer, year int, month time.Month, total string, dueDate time.Time) *invoice.Invoice {
	inv := createTestInvoice(&s.BaseServiceTestSuite, c, year, month, total)
	inv.DueDate = dueDate
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))
	return inv
}

func (s *OverdueServiceSuite) getCustomer(id string) *customer.Customer {
	c, err := s.GetStores().CustomerRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return c
}

func (s *OverdueServiceSuite) getInvoice(id string) *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return inv
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_MarksAndReminds() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	inv := createTestInvoice(&s.BaseServiceTestSuite, c, 2024, time.December, "150.00")

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal("Overdue invoices processed successfully", resp.Message)
	s.Equal(1, resp.ProcessedCount)
	s.Equal(1, resp.UpdatedCount)
	s.Equal(1, resp.NotificationsCount)
	s.Equal(0, resp.DiscontinuedCustomers)

	s.Equal(types.InvoiceStatusOverdue, s.getInvoice(inv.ID).Status)

	stored := s.getCustomer(c.ID)
	s.Equal(types.CustomerStatusActive, stored.Status)
	s.True(decimal.RequireFromString("150").Equal(stored.OutstandingDue))
	s.Require().NotNil(stored.DueSince)
	s.Equal(date(2025, time.January, 15), *stored.DueSince)

	contents := listNotifications(&s.BaseServiceTestSuite, c.ID)
	s.Require().Len(contents, 1)
	s.Equal("Reminder: Your invoice "+inv.InvoiceNumber+" is overdue. "+
		"Please make the payment at your earliest convenience to avoid service disruption.", contents[0])
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().RemindersSent))
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_IsIdempotent() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	createTestInvoice(&s.BaseServiceTestSuite, c, 2024, time.December, "150.00")

	_, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.ProcessedCount)
	s.Equal(0, resp.UpdatedCount)
	s.Equal(0, resp.NotificationsCount)
	s.Len(listNotifications(&s.BaseServiceTestSuite, c.ID), 1)
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_LeavesInvoicesNotYetDue() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	inv := createTestInvoice(&s.BaseServiceTestSuite, c, 2025, time.January, "150.00")

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.ProcessedCount)
	s.Equal(types.InvoiceStatusIssued, s.getInvoice(inv.ID).Status)
	s.Nil(s.getCustomer(c.ID).DueSince)
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_DueSinceIsSticky() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	s.invoiceDue(c, 2024, time.November, "100", date(2025, time.January, 10))

	_, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)

	s.invoiceDue(c, 2024, time.December, "110", date(2025, time.February, 10))
	s.GetClock().Set(time.Date(2025, time.February, 11, 9, 0, 0, 0, time.UTC))

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.UpdatedCount)
	s.Equal(0, resp.DiscontinuedCustomers)

	stored := s.getCustomer(c.ID)
	s.Require().NotNil(stored.DueSince)
	s.Equal(date(2025, time.January, 10), *stored.DueSince)
	s.True(decimal.RequireFromString("210").Equal(stored.OutstandingDue))
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_DiscontinuesAfterTwoMonths() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	daily := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	weekly := createTestPublication(&s.BaseServiceTestSuite, "Weekend Review", "45")
	active := createTestSubscription(&s.BaseServiceTestSuite, c, daily, date(2024, time.June, 1))
	paused := createTestSubscription(&s.BaseServiceTestSuite, c, weekly, date(2024, time.June, 1))
	paused.Status = types.SubscriptionStatusSuspended
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), paused))

	c.DueSince = lo.ToPtr(date(2025, time.January, 10))
	s.NoError(s.GetStores().CustomerRepo.Update(s.GetContext(), c))
	s.invoiceDue(c, 2025, time.February, "310", date(2025, time.March, 5))

	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	s.GetClock().Set(now)

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.UpdatedCount)
	s.Equal(1, resp.DiscontinuedCustomers)
	s.Equal(1, resp.NotificationsCount)

	s.Equal(types.CustomerStatusDiscontinued, s.getCustomer(c.ID).Status)

	cancelled, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), active.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, cancelled.Status)
	s.Require().NotNil(cancelled.EndDate)
	s.Equal(now, *cancelled.EndDate)

	untouched, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), paused.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusSuspended, untouched.Status)

	contents := listNotifications(&s.BaseServiceTestSuite, c.ID)
	s.Require().Len(contents, 1)
	s.Equal("Your subscription has been discontinued due to outstanding dues for more than 2 months. "+
		"Please clear your dues to reactivate your subscription.", contents[0])
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().CustomersDiscontinued))
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_OneMonthStillReminds() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	s.invoiceDue(c, 2025, time.January, "310", date(2025, time.January, 31))

	s.GetClock().Set(time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC))

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.DiscontinuedCustomers)
	s.Equal(types.CustomerStatusActive, s.getCustomer(c.ID).Status)
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_AlreadyDiscontinuedGetsNoNotification() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusDiscontinued)
	inv := createTestInvoice(&s.BaseServiceTestSuite, c, 2024, time.December, "150.00")

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.UpdatedCount)
	s.Equal(0, resp.NotificationsCount)
	s.Equal(0, resp.DiscontinuedCustomers)

	s.Equal(types.InvoiceStatusOverdue, s.getInvoice(inv.ID).Status)
	s.Empty(listNotifications(&s.BaseServiceTestSuite, c.ID))
}

func (s *OverdueServiceSuite) TestProcessOverdueInvoices_OneTransactionPerInvoice() {
	first := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	second := createTestCustomer(&s.BaseServiceTestSuite, "Ravi", types.CustomerStatusActive)
	createTestInvoice(&s.BaseServiceTestSuite, first, 2024, time.December, "150.00")
	createTestInvoice(&s.BaseServiceTestSuite, second, 2024, time.December, "90.00")

	resp, err := s.service.ProcessOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.UpdatedCount)
	s.Equal(2, s.GetDB().TxCount())
}
