package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	ierr "github.com/naasdev/naas/internal/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// WrapError classifies a driver error for the given entity
func WrapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ierr.WithError(err).
				WithHintf("%s already exists", entity).
				WithReportableDetails(map[string]any{
					"constraint": pqErr.Constraint,
				}).
				Mark(ierr.ErrAlreadyExists)
		case pqForeignKeyViolation:
			return ierr.WithError(err).
				WithHintf("%s references a record that does not exist", entity).
				Mark(ierr.ErrNotFound)
		case pqCheckViolation:
			return ierr.WithError(err).
				WithHintf("%s failed a data check", entity).
				Mark(ierr.ErrValidation)
		}
	}

	return ierr.WithError(err).
		WithHintf("Failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}

// NotFound builds the error returned when a keyed lookup or update matched no row
func NotFound(entity string) error {
	return ierr.NewErrorf("%s not found", entity).
		WithHintf("%s not found", entity).
		Mark(ierr.ErrNotFound)
}
