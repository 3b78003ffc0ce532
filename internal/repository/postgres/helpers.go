package postgres

import (
	"context"

	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/types"
)

// paginate applies the filter only when one was supplied
func paginate(qb *postgres.QueryBuilder, filter *types.QueryFilter, allowedSorts ...string) *postgres.QueryBuilder {
	if filter == nil {
		return qb
	}
	return qb.Paginate(filter, allowedSorts...)
}

func selectAll[T any](ctx context.Context, q postgres.Querier, qb *postgres.QueryBuilder, entity string) ([]*T, error) {
	query, args, err := qb.Build(q)
	if err != nil {
		return nil, postgres.WrapError(err, entity)
	}
	items := make([]*T, 0)
	if err := q.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, postgres.WrapError(err, entity)
	}
	return items, nil
}

func selectOne[T any](ctx context.Context, q postgres.Querier, qb *postgres.QueryBuilder, entity string) (*T, error) {
	query, args, err := qb.Build(q)
	if err != nil {
		return nil, postgres.WrapError(err, entity)
	}
	var item T
	if err := q.GetContext(ctx, &item, query, args...); err != nil {
		return nil, postgres.WrapError(err, entity)
	}
	return &item, nil
}

func count(ctx context.Context, q postgres.Querier, qb *postgres.QueryBuilder, entity string) (int, error) {
	query, args, err := qb.Build(q)
	if err != nil {
		return 0, postgres.WrapError(err, entity)
	}
	var n int
	if err := q.GetContext(ctx, &n, query, args...); err != nil {
		return 0, postgres.WrapError(err, entity)
	}
	return n, nil
}

// exec runs a named statement and reports ErrNotFound when no row matched
func execNamed(ctx context.Context, q postgres.Querier, query string, arg interface{}, entity string, requireRow bool) error {
	res, err := q.NamedExecContext(ctx, query, arg)
	if err != nil {
		return postgres.WrapError(err, entity)
	}
	if !requireRow {
		return nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return postgres.WrapError(err, entity)
	}
	if n == 0 {
		return postgres.NotFound(entity)
	}
	return nil
}
