package customer

import (
	"context"

	"github.com/naasdev/naas/internal/types"
)

// Repository defines the interface for customer data access
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	// GetForUpdate locks the row for the rest of the surrounding transaction
	GetForUpdate(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, filter *types.CustomerFilter) ([]*Customer, error)
	Count(ctx context.Context, filter *types.CustomerFilter) (int, error)
	Update(ctx context.Context, customer *Customer) error
}
