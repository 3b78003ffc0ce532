package service

import (
	"time"

	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/delivery"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/proration"
	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/notification"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// newTestServiceParams wires the services against the suite's in-memory
// stores, fake clock and pubsub
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	dispatcher := notification.NewDispatcher(
		stores.NotificationRepo,
		stores.CustomerRepo,
		notification.NewSenders(nil, s.GetLogger()),
		s.GetClock(),
		s.GetMetrics(),
		s.GetLogger(),
	)

	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		s.GetClock(),
		s.GetCache(),
		s.GetMetrics(),
		stores.CustomerRepo,
		stores.PublicationRepo,
		stores.SubscriptionRepo,
		stores.InvoiceRepo,
		stores.PaymentRepo,
		stores.NotificationRepo,
		stores.PersonnelRepo,
		stores.ScheduleRepo,
		proration.NewCalculator(),
		notification.NewPublisher(s.GetPubSub(), s.GetConfig(), s.GetLogger()),
		dispatcher,
	)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestCustomer(s *testutil.BaseServiceTestSuite, name string, status types.CustomerStatus) *customer.Customer {
	c := &customer.Customer{
		ID:             s.GetUUID(),
		UserID:         types.DefaultUserID,
		Name:           name,
		Address:        "12 Park Street",
		Phone:          "9800000000",
		Email:          "reader@example.com",
		OutstandingDue: decimal.Zero,
		Status:         status,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), c))
	return c
}

func createTestPublication(s *testutil.BaseServiceTestSuite, name string, price string) *publication.Publication {
	p := &publication.Publication{
		ID:        s.GetUUID(),
		Name:      name,
		Type:      types.PublicationTypeNewspaper,
		Frequency: types.PublicationFrequencyDaily,
		Price:     decimal.RequireFromString(price),
		IsActive:  true,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PublicationRepo.Create(s.GetContext(), p))
	return p
}

func createTestSubscription(s *testutil.BaseServiceTestSuite, c *customer.Customer, p *publication.Publication, start time.Time) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:            s.GetUUID(),
		CustomerID:    c.ID,
		PublicationID: p.ID,
		StartDate:     start,
		Status:        types.SubscriptionStatusActive,
		BillingCycle:  types.BillingCycleMonthly,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

// createTestInvoice stores an ISSUED invoice for the month with the given total
func createTestInvoice(s *testutil.BaseServiceTestSuite, c *customer.Customer, year int, month time.Month, total string) *invoice.Invoice {
	period, err := types.NewMonthlyBillingPeriod(year, month)
	s.NoError(err)

	amount := decimal.RequireFromString(total)
	inv := &invoice.Invoice{
		ID:                 s.GetUUID(),
		CustomerID:         c.ID,
		InvoiceNumber:      types.GenerateInvoiceNumber(year, month),
		IdempotencyKey:     s.GetUUID(),
		IssueDate:          period.Start,
		DueDate:            period.DueDate(s.GetConfig().Billing.InvoiceDueDay),
		Subtotal:           amount,
		Tax:                decimal.Zero,
		Total:              amount,
		Status:             types.InvoiceStatusIssued,
		BillingPeriodStart: period.Start,
		BillingPeriodEnd:   period.End,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

// createTestPersonnel stores active personnel. Each one joins the round
// after the ones created before it.
func createTestPersonnel(s *testutil.BaseServiceTestSuite, name string, rate string) *delivery.Personnel {
	n, err := s.GetStores().PersonnelRepo.Count(s.GetContext(), nil)
	s.NoError(err)

	p := &delivery.Personnel{
		ID:             s.GetUUID(),
		Name:           name,
		Phone:          "9811111111",
		JoiningDate:    date(2024, time.January, 1),
		IsActive:       true,
		CommissionRate: decimal.RequireFromString(rate),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	p.CreatedAt = testutil.DefaultNow.Add(time.Duration(n) * time.Minute)
	s.NoError(s.GetStores().PersonnelRepo.Create(s.GetContext(), p))
	return p
}

func createTestSchedule(s *testutil.BaseServiceTestSuite, sub *subscription.Subscription, p *delivery.Personnel, day time.Time, status types.DeliveryStatus) *delivery.Schedule {
	sch := &delivery.Schedule{
		ID:             s.GetUUID(),
		Date:           day,
		Status:         status,
		SubscriptionID: sub.ID,
		PersonnelID:    p.ID,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ScheduleRepo.Create(s.GetContext(), sch))
	return sch
}

func listNotifications(s *testutil.BaseServiceTestSuite, customerID string) []string {
	filter := types.NewNotificationFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.CustomerID = customerID
	items, err := s.GetStores().NotificationRepo.List(s.GetContext(), filter)
	s.NoError(err)

	contents := make([]string, 0, len(items))
	for _, n := range items {
		contents = append(contents, n.Content)
	}
	return contents
}
