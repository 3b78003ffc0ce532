package service

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/naasdev/naas/internal/api/dto"
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/domain/subscription"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// reportBatchSize is how many invoices are read per query while building a report
const reportBatchSize = 500

const monthLayout = "2006-01"

type ReportService interface {
	GetFinancialReport(ctx context.Context, req dto.FinancialReportRequest) (*dto.FinancialReportResponse, error)
	// ExportInvoicesCSV renders the invoices issued in the range as CSV and
	// returns the bytes with the number of rows
	ExportInvoicesCSV(ctx context.Context, req dto.FinancialReportRequest) ([]byte, int, error)
	GetDeliverySummary(ctx context.Context, req dto.DeliverySummaryRequest) (*dto.DeliverySummaryResponse, error)
	GetCustomerReport(ctx context.Context) (*dto.CustomerReportResponse, error)
}

type reportService struct {
	ServiceParams
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{
		ServiceParams: params,
	}
}

func (s *reportService) GetFinancialReport(ctx context.Context, req dto.FinancialReportRequest) (*dto.FinancialReportResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.invoicesIssuedIn(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.FinancialReportResponse{
		StartDate:        types.DateOf(req.StartDate),
		EndDate:          types.DateOf(req.EndDate),
		InvoiceCount:     len(invoices),
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
		CountByStatus:    make(map[types.InvoiceStatus]int),
		PaymentsByMethod: make(map[types.PaymentMethod]decimal.Decimal),
	}

	for _, inv := range invoices {
		resp.CountByStatus[inv.Status]++
		resp.TotalInvoiced = resp.TotalInvoiced.Add(inv.Total)

		switch inv.Status {
		case types.InvoiceStatusPaid:
			resp.TotalPaid = resp.TotalPaid.Add(inv.Total)
		case types.InvoiceStatusOverdue:
			resp.TotalOverdue = resp.TotalOverdue.Add(inv.Total)
			resp.TotalOutstanding = resp.TotalOutstanding.Add(inv.Total)
		case types.InvoiceStatusIssued:
			resp.TotalOutstanding = resp.TotalOutstanding.Add(inv.Total)
		}
	}

	if err := s.addReceipts(ctx, req, invoices, resp); err != nil {
		return nil, err
	}

	if len(invoices) > 0 {
		invoiceIDs := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string {
			return inv.ID
		})
		payments, err := s.PaymentRepo.List(ctx, &types.PaymentFilter{
			QueryFilter: types.NewNoLimitQueryFilter(),
			InvoiceIDs:  invoiceIDs,
			Statuses:    []types.PaymentStatus{types.PaymentStatusCompleted},
		})
		if err != nil {
			return nil, err
		}
		for method, group := range lo.GroupBy(payments, func(p *payment.Payment) types.PaymentMethod {
			return p.PaymentMethod
		}) {
			resp.PaymentsByMethod[method] = lo.Reduce(group, func(sum decimal.Decimal, p *payment.Payment, _ int) decimal.Decimal {
				return sum.Add(p.Amount)
			}, decimal.Zero)
		}
	}

	return resp, nil
}

// addReceipts totals the completed payments dated inside the range, whatever
// month their invoice was issued in, and buckets both sides per month
func (s *reportService) addReceipts(ctx context.Context, req dto.FinancialReportRequest, invoices []*invoice.Invoice, resp *dto.FinancialReportResponse) error {
	from, to := req.Range()
	filter := types.NewNoLimitPaymentFilter()
	filter.Statuses = []types.PaymentStatus{types.PaymentStatusCompleted}
	filter.StartTime = &from
	filter.EndTime = &to

	received, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return err
	}

	months := make(map[string]*dto.MonthlyTrend)
	trend := func(t time.Time) *dto.MonthlyTrend {
		key := t.Format(monthLayout)
		if m, ok := months[key]; ok {
			return m
		}
		m := &dto.MonthlyTrend{Month: key, Invoiced: decimal.Zero, Collected: decimal.Zero}
		months[key] = m
		return m
	}

	for _, inv := range invoices {
		m := trend(inv.IssueDate)
		m.Invoiced = m.Invoiced.Add(inv.Total)
	}

	resp.TotalReceived = decimal.Zero
	for _, p := range received {
		resp.TotalReceived = resp.TotalReceived.Add(p.Amount)
		m := trend(p.PaymentDate)
		m.Collected = m.Collected.Add(p.Amount)
	}
	resp.CollectionRate = percentOf(resp.TotalReceived, resp.TotalInvoiced)

	resp.MonthlyTrends = lo.Values(months)
	for _, m := range resp.MonthlyTrends {
		m.CollectionRate = percentOf(m.Collected, m.Invoiced)
	}
	sort.Slice(resp.MonthlyTrends, func(i, j int) bool {
		return resp.MonthlyTrends[i].Month < resp.MonthlyTrends[j].Month
	})
	return nil
}

// percentOf returns part as a percentage of whole, 0 when whole is 0
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

func (s *reportService) ExportInvoicesCSV(ctx context.Context, req dto.FinancialReportRequest) ([]byte, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	invoices, err := s.invoicesIssuedIn(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	rows := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceExportRow {
		return &dto.InvoiceExportRow{
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerID,
			IssueDate:     inv.IssueDate.Format(dateLayout),
			DueDate:       inv.DueDate.Format(dateLayout),
			PeriodStart:   inv.BillingPeriodStart.Format(dateLayout),
			PeriodEnd:     inv.BillingPeriodEnd.Format(dateLayout),
			Subtotal:      inv.Subtotal.StringFixed(2),
			Tax:           inv.Tax.StringFixed(2),
			Total:         inv.Total.StringFixed(2),
			Status:        string(inv.Status),
		}
	})

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, 0, ierr.WithError(err).
			WithHint("Failed to render the invoice export").
			Mark(ierr.ErrSystem)
	}

	s.Logger.Infow("exported invoices",
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"rows", len(rows),
		"csv_size_bytes", buf.Len(),
	)
	return buf.Bytes(), len(rows), nil
}

// GetDeliverySummary breaks the schedules in the range down by status,
// publication and delivery person. Both bounds are optional.
func (s *reportService) GetDeliverySummary(ctx context.Context, req dto.DeliverySummaryRequest) (*dto.DeliverySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := types.NewNoLimitDeliveryScheduleFilter()
	filter.StartTime = req.StartDate
	filter.EndTime = req.EndDate
	schedules, err := s.ScheduleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.DeliverySummaryResponse{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalDeliveries: len(schedules),
		StatusBreakdown: map[types.DeliveryStatus]int{
			types.DeliveryStatusScheduled: 0,
			types.DeliveryStatusDelivered: 0,
			types.DeliveryStatusMissed:    0,
			types.DeliveryStatusSuspended: 0,
		},
		PublicationBreakdown: make(map[string]int),
		PersonnelPerformance: make([]*dto.PersonnelPerformance, 0),
	}

	publications := NewPublicationService(s.ServiceParams)
	subs := make(map[string]*subscription.Subscription)
	performance := make(map[string]*dto.PersonnelPerformance)

	for _, sch := range schedules {
		resp.StatusBreakdown[sch.Status]++

		sub, ok := subs[sch.SubscriptionID]
		if !ok {
			sub, err = s.SubRepo.Get(ctx, sch.SubscriptionID)
			if err != nil {
				return nil, err
			}
			subs[sub.ID] = sub
		}
		pub, err := publications.GetPublication(ctx, sub.PublicationID)
		if err != nil {
			return nil, err
		}
		resp.PublicationBreakdown[pub.Name]++

		perf, ok := performance[sch.PersonnelID]
		if !ok {
			p, err := s.PersonnelRepo.Get(ctx, sch.PersonnelID)
			if err != nil {
				return nil, err
			}
			perf = &dto.PersonnelPerformance{PersonnelID: p.ID, Name: p.Name}
			performance[p.ID] = perf
			resp.PersonnelPerformance = append(resp.PersonnelPerformance, perf)
		}
		perf.Total++
		switch sch.Status {
		case types.DeliveryStatusDelivered:
			perf.Delivered++
		case types.DeliveryStatusMissed:
			perf.Missed++
		}
	}

	for _, perf := range resp.PersonnelPerformance {
		perf.SuccessRate = percentOf(decimal.NewFromInt(int64(perf.Delivered)), decimal.NewFromInt(int64(perf.Total)))
	}
	sort.Slice(resp.PersonnelPerformance, func(i, j int) bool {
		return resp.PersonnelPerformance[i].Name < resp.PersonnelPerformance[j].Name
	})
	return resp, nil
}

// GetCustomerReport summarises every customer's subscriptions and billing
func (s *reportService) GetCustomerReport(ctx context.Context) (*dto.CustomerReportResponse, error) {
	customers, err := s.CustomerRepo.List(ctx, types.NewNoLimitCustomerFilter())
	if err != nil {
		return nil, err
	}
	subs, err := s.SubRepo.List(ctx, types.NewNoLimitSubscriptionFilter())
	if err != nil {
		return nil, err
	}
	invoices, err := s.InvoiceRepo.List(ctx, types.NewNoLimitInvoiceFilter())
	if err != nil {
		return nil, err
	}

	subsByCustomer := lo.GroupBy(subs, func(sub *subscription.Subscription) string {
		return sub.CustomerID
	})
	invoicesByCustomer := lo.GroupBy(invoices, func(inv *invoice.Invoice) string {
		return inv.CustomerID
	})

	resp := &dto.CustomerReportResponse{
		Customers: make([]*dto.CustomerReportEntry, 0, len(customers)),
	}
	summary := &resp.Summary

	for _, c := range customers {
		own := subsByCustomer[c.ID]
		active := lo.CountBy(own, func(sub *subscription.Subscription) bool {
			return sub.Status == types.SubscriptionStatusActive
		})
		billed := invoicesByCustomer[c.ID]
		paid := lo.CountBy(billed, func(inv *invoice.Invoice) bool {
			return inv.Status == types.InvoiceStatusPaid
		})
		invoiced := lo.Reduce(billed, func(sum decimal.Decimal, inv *invoice.Invoice, _ int) decimal.Decimal {
			return sum.Add(inv.Total)
		}, decimal.Zero)

		resp.Customers = append(resp.Customers, &dto.CustomerReportEntry{
			ID:            c.ID,
			Name:          c.Name,
			Status:        c.Status,
			Subscriptions: dto.CustomerSubscriptionStats{Total: len(own), Active: active},
			Financial: dto.CustomerFinancialStats{
				TotalInvoiced:  invoiced,
				OutstandingDue: c.OutstandingDue,
				PaymentRate:    percentOf(decimal.NewFromInt(int64(paid)), decimal.NewFromInt(int64(len(billed)))),
			},
		})

		summary.TotalSubscriptions += len(own)
		summary.ActiveSubscriptions += active
	}

	summary.TotalCustomers = len(customers)
	summary.ActiveCustomers = lo.CountBy(customers, func(c *customer.Customer) bool {
		return c.Status == types.CustomerStatusActive
	})
	summary.DiscontinuedCustomers = lo.CountBy(customers, func(c *customer.Customer) bool {
		return c.IsDiscontinued()
	})
	total := decimal.NewFromInt(int64(summary.TotalCustomers))
	summary.DiscontinuationRate = percentOf(decimal.NewFromInt(int64(summary.DiscontinuedCustomers)), total)
	summary.AverageSubscriptionsPerCustomer = decimal.Zero
	if !total.IsZero() {
		summary.AverageSubscriptionsPerCustomer = decimal.NewFromInt(int64(summary.TotalSubscriptions)).Div(total).Round(2)
	}
	return resp, nil
}

// invoicesIssuedIn reads the invoices issued in the range in batches, oldest first
func (s *reportService) invoicesIssuedIn(ctx context.Context, req dto.FinancialReportRequest) ([]*invoice.Invoice, error) {
	from, to := req.Range()

	var all []*invoice.Invoice
	for offset := 0; ; offset += reportBatchSize {
		filter := &types.InvoiceFilter{
			QueryFilter: &types.QueryFilter{
				Limit:  lo.ToPtr(reportBatchSize),
				Offset: lo.ToPtr(offset),
				Sort:   lo.ToPtr("issue_date"),
				Order:  lo.ToPtr(types.OrderAsc),
			},
			IssuedFrom: &from,
			IssuedTo:   &to,
		}

		batch, err := s.InvoiceRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if len(batch) < reportBatchSize {
			break
		}
	}
	return all, nil
}
