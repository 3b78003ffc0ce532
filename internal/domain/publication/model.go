package publication

import (
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// Publication is a catalog entry customers subscribe to
type Publication struct {
	ID          string                     `db:"id" json:"id"`
	Name        string                     `db:"name" json:"name"`
	Description string                     `db:"description" json:"description"`
	Type        types.PublicationType      `db:"type" json:"type"`
	Frequency   types.PublicationFrequency `db:"frequency" json:"frequency"`

	// Price is the rate charged for one full billing period
	Price decimal.Decimal `db:"price" json:"price" swaggertype:"string"`

	IsActive bool `db:"is_active" json:"is_active"`

	types.BaseModel
}
