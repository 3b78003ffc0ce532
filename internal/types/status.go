package types

import (
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/samber/lo"
)

// transitionTable lists, for every status, the statuses it may move to.
// A status missing from the table is terminal.
type transitionTable[S ~string] map[S][]S

func (t transitionTable[S]) allows(from, to S) bool {
	return lo.Contains(t[from], to)
}

// transition returns the next status or an invalid operation error naming the entity
func (t transitionTable[S]) transition(entity string, from, to S) (S, error) {
	if !t.allows(from, to) {
		return from, ierr.NewError("invalid " + entity + " status transition").
			WithHintf("%s cannot move from %s to %s", entity, from, to).
			WithReportableDetails(map[string]any{
				"from":    from,
				"to":      to,
				"allowed": t[from],
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return to, nil
}

func validateEnum[S ~string](name string, value S, allowed []S) error {
	if !lo.Contains(allowed, value) {
		return ierr.NewError("invalid " + name).
			WithHintf("Please provide a valid %s", name).
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"value":   value,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
