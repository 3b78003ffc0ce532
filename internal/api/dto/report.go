package dto

import (
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

type FinancialReportRequest struct {
	StartDate time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
}

func (r *FinancialReportRequest) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ierr.NewError("start_date and end_date are required").
			WithHint("Please provide start_date and end_date as YYYY-MM-DD").
			Mark(ierr.ErrValidation)
	}
	if r.EndDate.Before(r.StartDate) {
		return ierr.NewError("end_date before start_date").
			WithHint("End date must not be before start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Range returns the inclusive range of issue times covered by the report
func (r *FinancialReportRequest) Range() (time.Time, time.Time) {
	return types.DateOf(r.StartDate), types.DateOf(r.EndDate).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

type FinancialReportResponse struct {
	StartDate        time.Time                               `json:"start_date"`
	EndDate          time.Time                               `json:"end_date"`
	InvoiceCount     int                                     `json:"invoice_count"`
	TotalInvoiced    decimal.Decimal                         `json:"total_invoiced" swaggertype:"string"`
	TotalPaid        decimal.Decimal                         `json:"total_paid" swaggertype:"string"`
	TotalOutstanding decimal.Decimal                         `json:"total_outstanding" swaggertype:"string"`
	TotalOverdue     decimal.Decimal                         `json:"total_overdue" swaggertype:"string"`
	CountByStatus    map[types.InvoiceStatus]int             `json:"count_by_status"`
	PaymentsByMethod map[types.PaymentMethod]decimal.Decimal `json:"payments_by_method"`

	// TotalReceived sums completed payments by payment date, so it can
	// include settlements of invoices issued before the range
	TotalReceived  decimal.Decimal `json:"total_received" swaggertype:"string"`
	CollectionRate decimal.Decimal `json:"collection_rate" swaggertype:"string"`
	MonthlyTrends  []*MonthlyTrend `json:"monthly_trends"`
}

// MonthlyTrend compares what was invoiced and collected in one YYYY-MM month
type MonthlyTrend struct {
	Month          string          `json:"month"`
	Invoiced       decimal.Decimal `json:"invoiced" swaggertype:"string"`
	Collected      decimal.Decimal `json:"collected" swaggertype:"string"`
	CollectionRate decimal.Decimal `json:"collection_rate" swaggertype:"string"`
}

// InvoiceExportRow is one line of the invoice CSV export
type InvoiceExportRow struct {
	InvoiceNumber string `csv:"invoice_number"`
	CustomerID    string `csv:"customer_id"`
	IssueDate     string `csv:"issue_date"`
	DueDate       string `csv:"due_date"`
	PeriodStart   string `csv:"billing_period_start"`
	PeriodEnd     string `csv:"billing_period_end"`
	Subtotal      string `csv:"subtotal"`
	Tax           string `csv:"tax"`
	Total         string `csv:"total"`
	Status        string `csv:"status"`
}

type DeliverySummaryRequest struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

func (r *DeliverySummaryRequest) Validate() error {
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return ierr.NewError("end_date before start_date").
			WithHint("End date must not be before start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PersonnelPerformance is one delivery person's record over the summary range
type PersonnelPerformance struct {
	PersonnelID string          `json:"personnel_id"`
	Name        string          `json:"name"`
	Total       int             `json:"total"`
	Delivered   int             `json:"delivered"`
	Missed      int             `json:"missed"`
	SuccessRate decimal.Decimal `json:"success_rate" swaggertype:"string"`
}

type DeliverySummaryResponse struct {
	StartDate            *time.Time                   `json:"start_date,omitempty"`
	EndDate              *time.Time                   `json:"end_date,omitempty"`
	TotalDeliveries      int                          `json:"total_deliveries"`
	StatusBreakdown      map[types.DeliveryStatus]int `json:"status_breakdown"`
	PublicationBreakdown map[string]int               `json:"publication_breakdown"`
	PersonnelPerformance []*PersonnelPerformance      `json:"personnel_performance"`
}

type CustomerSubscriptionStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type CustomerFinancialStats struct {
	TotalInvoiced  decimal.Decimal `json:"total_invoiced" swaggertype:"string"`
	OutstandingDue decimal.Decimal `json:"outstanding_due" swaggertype:"string"`
	// PaymentRate is the share of the customer's invoices that are PAID, as a percentage
	PaymentRate decimal.Decimal `json:"payment_rate" swaggertype:"string"`
}

type CustomerReportEntry struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	Status        types.CustomerStatus      `json:"status"`
	Subscriptions CustomerSubscriptionStats `json:"subscriptions"`
	Financial     CustomerFinancialStats    `json:"financial"`
}

type CustomerReportSummary struct {
	TotalCustomers                  int             `json:"total_customers"`
	ActiveCustomers                 int             `json:"active_customers"`
	DiscontinuedCustomers           int             `json:"discontinued_customers"`
	DiscontinuationRate             decimal.Decimal `json:"discontinuation_rate" swaggertype:"string"`
	TotalSubscriptions              int             `json:"total_subscriptions"`
	ActiveSubscriptions             int             `json:"active_subscriptions"`
	AverageSubscriptionsPerCustomer decimal.Decimal `json:"average_subscriptions_per_customer" swaggertype:"string"`
}

type CustomerReportResponse struct {
	Summary   CustomerReportSummary  `json:"summary"`
	Customers []*CustomerReportEntry `json:"customers"`
}
