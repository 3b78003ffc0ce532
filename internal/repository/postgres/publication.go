package postgres

import (
	"context"

	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

type publicationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPublicationRepository(db *postgres.DB, logger *logger.Logger) publication.Repository {
	return &publicationRepository{db: db, logger: logger}
}

func (r *publicationRepository) Create(ctx context.Context, p *publication.Publication) error {
	query := `
		INSERT INTO publications (
			id, name, description, type, frequency, price, is_active,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :description, :type, :frequency, :price, :is_active,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, p, "publication", false)
}

func (r *publicationRepository) Get(ctx context.Context, id string) (*publication.Publication, error) {
	qb := postgres.NewQueryBuilder("SELECT * FROM publications").
		Where("id = :id", map[string]interface{}{"id": id})
	return selectOne[publication.Publication](ctx, r.db.GetQuerier(ctx), qb, "publication")
}

func (r *publicationRepository) List(ctx context.Context, filter *types.PublicationFilter) ([]*publication.Publication, error) {
	qb := r.filtered(filter)
	if filter != nil {
		qb = paginate(qb, filter.QueryFilter, "created_at", "name", "price")
	}
	return selectAll[publication.Publication](ctx, r.db.GetQuerier(ctx), qb, "publication")
}

func (r *publicationRepository) Count(ctx context.Context, filter *types.PublicationFilter) (int, error) {
	return count(ctx, r.db.GetQuerier(ctx), r.filtered(filter).Count("publications"), "publication")
}

func (r *publicationRepository) Update(ctx context.Context, p *publication.Publication) error {
	query := `
		UPDATE publications SET
			name = :name,
			description = :description,
			type = :type,
			frequency = :frequency,
			price = :price,
			is_active = :is_active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	return execNamed(ctx, r.db.GetQuerier(ctx), query, p, "publication", true)
}

func (r *publicationRepository) filtered(filter *types.PublicationFilter) *postgres.QueryBuilder {
	qb := postgres.NewQueryBuilder("SELECT * FROM publications")
	if filter == nil {
		return qb.Where("is_active = TRUE", nil)
	}
	return qb.
		WhereIf(!filter.IncludeInactive, "is_active = TRUE", nil).
		WhereIf(filter.Type != nil, "type = :type", map[string]interface{}{"type": filter.Type}).
		WhereIf(len(filter.PublicationIDs) > 0, "id IN (:publication_ids)", map[string]interface{}{"publication_ids": filter.PublicationIDs})
}
