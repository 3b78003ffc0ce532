package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/naasdev/naas/internal/types"
	"github.com/samber/lo"
)

// QueryBuilder assembles a SELECT with named arguments and compiles it to
// positional postgres arguments. Slice arguments expand for IN clauses.
type QueryBuilder struct {
	base       string
	conditions []string
	args       map[string]interface{}
	orderBy    string
	limit      int
	offset     int
	suffix     string
}

// NewQueryBuilder starts a query from a base SELECT without a WHERE clause
func NewQueryBuilder(base string) *QueryBuilder {
	return &QueryBuilder{
		base: base,
		args: make(map[string]interface{}),
	}
}

// Where adds a condition with its named arguments
func (qb *QueryBuilder) Where(condition string, args map[string]interface{}) *QueryBuilder {
	qb.conditions = append(qb.conditions, condition)
	for k, v := range args {
		qb.args[k] = v
	}
	return qb
}

// WhereIf adds the condition only when ok is true
func (qb *QueryBuilder) WhereIf(ok bool, condition string, args map[string]interface{}) *QueryBuilder {
	if !ok {
		return qb
	}
	return qb.Where(condition, args)
}

// OrderBy sets the ORDER BY clause from trusted column names
func (qb *QueryBuilder) OrderBy(clause string) *QueryBuilder {
	qb.orderBy = clause
	return qb
}

// Suffix appends a trailing clause such as FOR UPDATE
func (qb *QueryBuilder) Suffix(suffix string) *QueryBuilder {
	qb.suffix = suffix
	return qb
}

// Paginate applies the filter's sort, order, limit and offset. Sort columns
// outside allowedSorts fall back to created_at.
func (qb *QueryBuilder) Paginate(filter types.BaseFilter, allowedSorts ...string) *QueryBuilder {
	if filter == nil {
		return qb
	}
	sort := filter.GetSort()
	if !lo.Contains(allowedSorts, sort) {
		sort = types.FILTER_DEFAULT_SORT
	}
	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}
	qb.orderBy = fmt.Sprintf("%s %s", sort, order)
	if !filter.IsUnlimited() {
		qb.limit = filter.GetLimit()
		qb.offset = filter.GetOffset()
	}
	return qb
}

// Count rewrites the query into a COUNT over the same conditions
func (qb *QueryBuilder) Count(table string) *QueryBuilder {
	return &QueryBuilder{
		base:       "SELECT COUNT(*) FROM " + table,
		conditions: qb.conditions,
		args:       qb.args,
	}
}

// Build compiles the query for the given querier
func (qb *QueryBuilder) Build(q Querier) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(qb.base)
	if len(qb.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(qb.conditions, " AND "))
	}
	if qb.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(qb.orderBy)
	}
	if qb.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", qb.limit, qb.offset)
	}
	if qb.suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(qb.suffix)
	}

	query, args, err := sqlx.Named(sb.String(), qb.args)
	if err != nil {
		return "", nil, err
	}
	query, args, err = sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return q.Rebind(query), args, nil
}
