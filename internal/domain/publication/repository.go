package publication

import (
	"context"

	"github.com/naasdev/naas/internal/types"
)

// Repository defines the interface for catalog data access
type Repository interface {
	Create(ctx context.Context, publication *Publication) error
	Get(ctx context.Context, id string) (*Publication, error)
	List(ctx context.Context, filter *types.PublicationFilter) ([]*Publication, error)
	Count(ctx context.Context, filter *types.PublicationFilter) (int, error)
	Update(ctx context.Context, publication *Publication) error
}
