package invoice

import (
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is the charge for one subscription on an invoice
type LineItem struct {
	ID              string          `db:"id" json:"id"`
	InvoiceID       string          `db:"invoice_id" json:"invoice_id"`
	SubscriptionID  string          `db:"subscription_id" json:"subscription_id"`
	PublicationID   string          `db:"publication_id" json:"publication_id"`
	PublicationName string          `db:"publication_name" json:"publication_name"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price" swaggertype:"string"`
	DaysInPeriod    int             `db:"days_in_period" json:"days_in_period"`
	ActiveDays      int             `db:"active_days" json:"active_days"`
	Amount          decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`

	types.BaseModel
}
