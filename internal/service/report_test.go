package service

import (
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/naasdev/naas/internal/api/dto"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReportServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReportService
}

func TestReportService(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewReportService(params)
	s.setupTestData(params)
}

func (s *ReportServiceSuite) december() dto.FinancialReportRequest {
	return dto.FinancialReportRequest{
		StartDate: date(2024, time.December, 1),
		EndDate:   date(2024, time.December, 31),
	}
}

// setupTestData leaves one PAID, one OVERDUE and one ISSUED invoice for
// December plus a November invoice outside the report range
func (s *ReportServiceSuite) setupTestData(params ServiceParams) {
	paid := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	late := createTestCustomer(&s.BaseServiceTestSuite, "Ravi", types.CustomerStatusActive)
	open := createTestCustomer(&s.BaseServiceTestSuite, "Meera", types.CustomerStatusActive)

	paidInvoice := createTestInvoice(&s.BaseServiceTestSuite, paid, 2024, time.December, "150")
	lateInvoice := createTestInvoice(&s.BaseServiceTestSuite, late, 2024, time.December, "120")
	createTestInvoice(&s.BaseServiceTestSuite, open, 2024, time.December, "80")
	createTestInvoice(&s.BaseServiceTestSuite, open, 2024, time.November, "999")

	_, err := NewPaymentService(params).ProcessPayment(s.GetContext(), dto.ProcessPaymentRequest{
		InvoiceID:     paidInvoice.ID,
		Amount:        decimal.NewFromInt(150),
		PaymentMethod: types.PaymentMethodUPI,
	})
	s.NoError(err)

	lateInvoice.Status = types.InvoiceStatusOverdue
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), lateInvoice))
}

func (s *ReportServiceSuite) TestGetFinancialReport() {
	report, err := s.service.GetFinancialReport(s.GetContext(), s.december())
	s.NoError(err)

	s.Equal(3, report.InvoiceCount)
	s.True(decimal.NewFromInt(350).Equal(report.TotalInvoiced), "invoiced %s", report.TotalInvoiced)
	s.True(decimal.NewFromInt(150).Equal(report.TotalPaid), "paid %s", report.TotalPaid)
	s.True(decimal.NewFromInt(200).Equal(report.TotalOutstanding), "outstanding %s", report.TotalOutstanding)
	s.True(decimal.NewFromInt(120).Equal(report.TotalOverdue), "overdue %s", report.TotalOverdue)

	s.Equal(map[types.InvoiceStatus]int{
		types.InvoiceStatusPaid:    1,
		types.InvoiceStatusOverdue: 1,
		types.InvoiceStatusIssued:  1,
	}, report.CountByStatus)

	s.Require().Contains(report.PaymentsByMethod, types.PaymentMethodUPI)
	s.True(decimal.NewFromInt(150).Equal(report.PaymentsByMethod[types.PaymentMethodUPI]))
}

func (s *ReportServiceSuite) TestGetFinancialReport_ReceiptsFollowPaymentDate() {
	// the December invoice was settled on 2025-01-20
	december, err := s.service.GetFinancialReport(s.GetContext(), s.december())
	s.NoError(err)
	s.True(decimal.NewFromInt(150).Equal(december.TotalPaid))
	s.True(december.TotalReceived.IsZero(), "received %s", december.TotalReceived)
	s.True(december.CollectionRate.IsZero())

	january, err := s.service.GetFinancialReport(s.GetContext(), dto.FinancialReportRequest{
		StartDate: date(2025, time.January, 1),
		EndDate:   date(2025, time.January, 31),
	})
	s.NoError(err)
	s.Zero(january.InvoiceCount)
	s.True(january.TotalPaid.IsZero())
	s.True(decimal.NewFromInt(150).Equal(january.TotalReceived), "received %s", january.TotalReceived)
}

func (s *ReportServiceSuite) TestGetFinancialReport_MonthlyTrends() {
	report, err := s.service.GetFinancialReport(s.GetContext(), dto.FinancialReportRequest{
		StartDate: date(2024, time.December, 1),
		EndDate:   date(2025, time.January, 31),
	})
	s.NoError(err)

	s.True(decimal.RequireFromString("42.86").Equal(report.CollectionRate), "rate %s", report.CollectionRate)
	s.Require().Len(report.MonthlyTrends, 2)

	dec, jan := report.MonthlyTrends[0], report.MonthlyTrends[1]
	s.Equal("2024-12", dec.Month)
	s.True(decimal.NewFromInt(350).Equal(dec.Invoiced))
	s.True(dec.Collected.IsZero())
	s.True(dec.CollectionRate.IsZero())

	s.Equal("2025-01", jan.Month)
	s.True(jan.Invoiced.IsZero())
	s.True(decimal.NewFromInt(150).Equal(jan.Collected))
	s.True(jan.CollectionRate.IsZero())
}

func (s *ReportServiceSuite) TestGetFinancialReport_EmptyRange() {
	report, err := s.service.GetFinancialReport(s.GetContext(), dto.FinancialReportRequest{
		StartDate: date(2023, time.January, 1),
		EndDate:   date(2023, time.January, 31),
	})
	s.NoError(err)
	s.Zero(report.InvoiceCount)
	s.True(report.TotalInvoiced.IsZero())
	s.Empty(report.PaymentsByMethod)
}

func (s *ReportServiceSuite) TestGetFinancialReport_InvalidRange() {
	_, err := s.service.GetFinancialReport(s.GetContext(), dto.FinancialReportRequest{
		StartDate: date(2024, time.December, 31),
		EndDate:   date(2024, time.December, 1),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetFinancialReport(s.GetContext(), dto.FinancialReportRequest{})
	s.True(ierr.IsValidation(err))
}

func (s *ReportServiceSuite) TestExportInvoicesCSV() {
	data, rows, err := s.service.ExportInvoicesCSV(s.GetContext(), s.december())
	s.NoError(err)
	s.Equal(3, rows)

	header := strings.SplitN(string(data), "\n", 2)[0]
	s.Equal("invoice_number,customer_id,issue_date,due_date,billing_period_start,billing_period_end,subtotal,tax,total,status", header)

	var parsed []*dto.InvoiceExportRow
	s.NoError(gocsv.UnmarshalBytes(data, &parsed))
	s.Require().Len(parsed, 3)

	totals := make(map[string]string)
	for _, row := range parsed {
		s.Equal("2024-12-01", row.IssueDate)
		s.Equal("2025-01-15", row.DueDate)
		s.Equal("2024-12-31", row.PeriodEnd)
		s.Equal("0.00", row.Tax)
		totals[row.Status] = row.Total
	}
	s.Equal(map[string]string{
		string(types.InvoiceStatusPaid):    "150.00",
		string(types.InvoiceStatusOverdue): "120.00",
		string(types.InvoiceStatusIssued):  "80.00",
	}, totals)
}

func (s *ReportServiceSuite) TestGetDeliverySummary() {
	suresh := createTestPersonnel(&s.BaseServiceTestSuite, "Suresh", "2.50")
	anil := createTestPersonnel(&s.BaseServiceTestSuite, "Anil", "2.50")
	herald := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	review := createTestPublication(&s.BaseServiceTestSuite, "Weekend Review", "60")

	kiran := createTestCustomer(&s.BaseServiceTestSuite, "Kiran", types.CustomerStatusActive)
	vikram := createTestCustomer(&s.BaseServiceTestSuite, "Vikram", types.CustomerStatusActive)
	kiranHerald := createTestSubscription(&s.BaseServiceTestSuite, kiran, herald, date(2024, time.December, 1))
	kiranReview := createTestSubscription(&s.BaseServiceTestSuite, kiran, review, date(2024, time.December, 1))
	vikramHerald := createTestSubscription(&s.BaseServiceTestSuite, vikram, herald, date(2024, time.December, 1))

	createTestSchedule(&s.BaseServiceTestSuite, kiranHerald, suresh, date(2025, time.January, 18), types.DeliveryStatusDelivered)
	createTestSchedule(&s.BaseServiceTestSuite, kiranReview, suresh, date(2025, time.January, 19), types.DeliveryStatusDelivered)
	createTestSchedule(&s.BaseServiceTestSuite, kiranHerald, suresh, date(2025, time.January, 19), types.DeliveryStatusMissed)
	createTestSchedule(&s.BaseServiceTestSuite, vikramHerald, anil, date(2025, time.January, 20), types.DeliveryStatusScheduled)

	summary, err := s.service.GetDeliverySummary(s.GetContext(), dto.DeliverySummaryRequest{})
	s.NoError(err)
	s.Equal(4, summary.TotalDeliveries)
	s.Equal(map[types.DeliveryStatus]int{
		types.DeliveryStatusScheduled: 1,
		types.DeliveryStatusDelivered: 2,
		types.DeliveryStatusMissed:    1,
		types.DeliveryStatusSuspended: 0,
	}, summary.StatusBreakdown)
	s.Equal(map[string]int{"Morning Herald": 3, "Weekend Review": 1}, summary.PublicationBreakdown)

	s.Require().Len(summary.PersonnelPerformance, 2)
	first, second := summary.PersonnelPerformance[0], summary.PersonnelPerformance[1]
	s.Equal("Anil", first.Name)
	s.Equal(1, first.Total)
	s.True(first.SuccessRate.IsZero())
	s.Equal("Suresh", second.Name)
	s.Equal(3, second.Total)
	s.Equal(2, second.Delivered)
	s.Equal(1, second.Missed)
	s.True(decimal.RequireFromString("66.67").Equal(second.SuccessRate), "rate %s", second.SuccessRate)

	day := date(2025, time.January, 19)
	oneDay, err := s.service.GetDeliverySummary(s.GetContext(), dto.DeliverySummaryRequest{StartDate: &day, EndDate: &day})
	s.NoError(err)
	s.Equal(2, oneDay.TotalDeliveries)
	s.Require().Len(oneDay.PersonnelPerformance, 1)

	before := date(2025, time.January, 1)
	_, err = s.service.GetDeliverySummary(s.GetContext(), dto.DeliverySummaryRequest{StartDate: &day, EndDate: &before})
	s.True(ierr.IsValidation(err))
}

func (s *ReportServiceSuite) TestGetCustomerReport() {
	pub := createTestPublication(&s.BaseServiceTestSuite, "Morning Herald", "310")
	other := createTestPublication(&s.BaseServiceTestSuite, "Evening Post", "120")
	createTestCustomer(&s.BaseServiceTestSuite, "Kiran", types.CustomerStatusDiscontinued)

	byName := func(report *dto.CustomerReportResponse) map[string]*dto.CustomerReportEntry {
		entries := make(map[string]*dto.CustomerReportEntry)
		for _, e := range report.Customers {
			entries[e.Name] = e
		}
		return entries
	}

	before, err := s.service.GetCustomerReport(s.GetContext())
	s.NoError(err)
	customers := byName(before)
	s.Require().Contains(customers, "Asha")
	s.Require().Contains(customers, "Meera")

	asha, err := s.GetStores().CustomerRepo.Get(s.GetContext(), customers["Asha"].ID)
	s.Require().NoError(err)
	meera, err := s.GetStores().CustomerRepo.Get(s.GetContext(), customers["Meera"].ID)
	s.Require().NoError(err)

	createTestSubscription(&s.BaseServiceTestSuite, asha, pub, date(2024, time.June, 1))
	cancelled := createTestSubscription(&s.BaseServiceTestSuite, asha, other, date(2024, time.June, 1))
	cancelled.Status = types.SubscriptionStatusCancelled
	cancelled.EndDate = lo.ToPtr(date(2024, time.December, 31))
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), cancelled))
	createTestSubscription(&s.BaseServiceTestSuite, meera, pub, date(2024, time.June, 1))

	report, err := s.service.GetCustomerReport(s.GetContext())
	s.NoError(err)

	s.Equal(4, report.Summary.TotalCustomers)
	s.Equal(3, report.Summary.ActiveCustomers)
	s.Equal(1, report.Summary.DiscontinuedCustomers)
	s.True(decimal.RequireFromString("25").Equal(report.Summary.DiscontinuationRate))
	s.Equal(3, report.Summary.TotalSubscriptions)
	s.Equal(2, report.Summary.ActiveSubscriptions)
	s.True(decimal.RequireFromString("0.75").Equal(report.Summary.AverageSubscriptionsPerCustomer))

	customers = byName(report)
	s.Equal(dto.CustomerSubscriptionStats{Total: 2, Active: 1}, customers["Asha"].Subscriptions)
	s.True(decimal.NewFromInt(150).Equal(customers["Asha"].Financial.TotalInvoiced))
	s.True(decimal.NewFromInt(100).Equal(customers["Asha"].Financial.PaymentRate))

	s.True(decimal.NewFromInt(1079).Equal(customers["Meera"].Financial.TotalInvoiced))
	s.True(customers["Meera"].Financial.PaymentRate.IsZero())

	s.Equal(types.CustomerStatusDiscontinued, customers["Kiran"].Status)
	s.Zero(customers["Kiran"].Subscriptions.Total)
	s.True(customers["Kiran"].Financial.PaymentRate.IsZero())
}
