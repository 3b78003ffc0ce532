package postgres

import (
	"context"
	"time"

	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

// Create inserts the invoice and its line items. Both statements share the
// caller's transaction when there is one.
func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO invoices (
				id, customer_id, invoice_number, idempotency_key, issue_date, due_date,
				subtotal, tax, total, status, billing_period_start, billing_period_end,
				created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :customer_id, :invoice_number, :idempotency_key, :issue_date, :due_date,
				:subtotal, :tax, :total, :status, :billing_period_start, :billing_period_end,
				:created_at, :updated_at, :created_by, :updated_by
			)`

		r.logger.Debugw("creating invoice",
			"invoice_id", inv.ID,
			"customer_id", inv.CustomerID,
			"invoice_number", inv.InvoiceNumber,
			"line_items", len(inv.LineItems),
		)

		q := r.db.GetQuerier(ctx)
		if err := execNamed(ctx, q, query, inv, "invoice", false); err != nil {
			return err
		}

		itemQuery := `
			INSERT INTO invoice_line_items (
				id, invoice_id, subscription_id, publication_id, publication_name, unit_price,
				days_in_period, active_days, amount, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :invoice_id, :subscription_id, :publication_id, :publication_name, :unit_price,
				:days_in_period, :active_days, :amount, :created_at, :updated_at, :created_by, :updated_by
			)`
		for _, item := range inv.LineItems {
			item.InvoiceID = inv.ID
			if err := execNamed(ctx, q, itemQuery, item, "invoice line item", false); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM invoices").
		Where("id = :id", map[string]interface{}{"id": id})
	inv, err := selectOne[invoice.Invoice](ctx, r.db.GetQuerier(ctx), qb, "invoice")
	if err != nil {
		return nil, err
	}
	if err := r.loadLineItems(ctx, []*invoice.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM invoices").
		Where("id = :id", map[string]interface{}{"id": id}).
		Suffix("FOR UPDATE")
	return selectOne[invoice.Invoice](ctx, r.db.GetQuerier(ctx), qb, "invoice")
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			status = :status,
			due_date = :due_date,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"status", inv.Status,
	)

	return execNamed(ctx, r.db.GetQuerier(ctx), query, inv, "invoice", true)
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "issue_date", "due_date", "total", "billing_period_start")
	}
	return selectAll[invoice.Invoice](ctx, r.db.GetQuerier(ctx), qb, "invoice")
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("invoices"), "invoice")
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, customerID string, period types.BillingPeriod) (bool, error) {
	filter := types.NewNoLimitInvoiceFilter()
	filter.CustomerID = customerID
	filter.PeriodStart = &period.Start
	filter.PeriodEnd = &period.End

	n, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *invoiceRepository) ListIssuedPastDue(ctx context.Context, now time.Time) ([]*invoice.Invoice, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM invoices").
		Where("status = :status", map[string]interface{}{"status": types.InvoiceStatusIssued}).
		Where("due_date < :now", map[string]interface{}{"now": now}).
		OrderBy("due_date ASC, created_at ASC")
	return selectAll[invoice.Invoice](ctx, r.db.GetQuerier(ctx), qb, "invoice")
}

func (r *invoiceRepository) ListUnpaidByCustomer(ctx context.Context, customerID string) ([]*invoice.Invoice, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM invoices").
		Where("customer_id = :customer_id", map[string]interface{}{"customer_id": customerID}).
		Where("status IN (:statuses)", map[string]interface{}{"statuses": types.UnpaidInvoiceStatuses}).
		OrderBy("due_date ASC")
	return selectAll[invoice.Invoice](ctx, r.db.GetQuerier(ctx), qb, "invoice")
}

func (r *invoiceRepository) loadLineItems(ctx context.Context, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string { return inv.ID })
	qb := postgres.NewQueryBuilder("SELECT * FROM invoice_line_items").
		Where("invoice_id IN (:invoice_ids)", map[string]interface{}{"invoice_ids": ids}).
		OrderBy("created_at ASC")
	items, err := selectAll[invoice.LineItem](ctx, r.db.GetQuerier(ctx), qb, "invoice line item")
	if err != nil {
		return err
	}
	byInvoice := lo.GroupBy(items, func(item *invoice.LineItem) string { return item.InvoiceID })
	for _, inv := range invoices {
		inv.LineItems = byInvoice[inv.ID]
	}
	return nil
}

func (r *invoiceRepository) filtered(filter *types.InvoiceFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM invoices")
	if filter == nil {
		return qb
	}
	return qb.
		WhereIf(filter.CustomerID != "", "customer_id = :customer_id", map[string]interface{}{"customer_id": filter.CustomerID}).
		WhereIf(len(filter.Statuses) > 0, "status IN (:statuses)", map[string]interface{}{"statuses": filter.Statuses}).
		WhereIf(filter.IssuedFrom != nil, "issue_date >= :issued_from", map[string]interface{}{"issued_from": filter.IssuedFrom}).
		WhereIf(filter.IssuedTo != nil, "issue_date <= :issued_to", map[string]interface{}{"issued_to": filter.IssuedTo}).
		WhereIf(filter.DueBefore != nil, "due_date < :due_before", map[string]interface{}{"due_before": filter.DueBefore}).
		WhereIf(filter.PeriodStart != nil, "billing_period_start = :period_start", map[string]interface{}{"period_start": filter.PeriodStart}).
		WhereIf(filter.PeriodEnd != nil, "billing_period_end = :period_end", map[string]interface{}{"period_end": filter.PeriodEnd}).
		WhereIf(len(filter.InvoiceNumbers) > 0, "invoice_number IN (:invoice_numbers)", map[string]interface{}{"invoice_numbers": filter.InvoiceNumbers})
}
