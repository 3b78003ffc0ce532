package types

import (
	"fmt"
	"time"

	ierr "github.com/naasdev/naas/internal/errors"
)

// BillingPeriod is the calendar month an invoice covers. Both bounds are
// midnight UTC dates and End is the last day of the month.
type BillingPeriod struct {
	Start time.Time
	End   time.Time
}

// NewMonthlyBillingPeriod returns the billing period for the given calendar month
func NewMonthlyBillingPeriod(year int, month time.Month) (BillingPeriod, error) {
	if month < time.January || month > time.December {
		return BillingPeriod{}, ierr.NewError("invalid billing month").
			WithHint("Month must be between 1 and 12").
			WithReportableDetails(map[string]any{"month": int(month)}).
			Mark(ierr.ErrValidation)
	}
	if year < 2000 || year > 9999 {
		return BillingPeriod{}, ierr.NewError("invalid billing year").
			WithHint("Please provide a valid four digit year").
			WithReportableDetails(map[string]any{"year": year}).
			Mark(ierr.ErrValidation)
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return BillingPeriod{Start: start, End: end}, nil
}

// BillingPeriodFor returns the billing period containing t
func BillingPeriodFor(t time.Time) BillingPeriod {
	t = t.UTC()
	p, _ := NewMonthlyBillingPeriod(t.Year(), t.Month())
	return p
}

// Days returns the number of calendar days in the period
func (p BillingPeriod) Days() int {
	return p.End.Day()
}

// Year returns the billing year
func (p BillingPeriod) Year() int {
	return p.Start.Year()
}

// Month returns the billing month
func (p BillingPeriod) Month() time.Month {
	return p.Start.Month()
}

// DueDate returns the given day of the month following the period
func (p BillingPeriod) DueDate(day int) time.Time {
	return time.Date(p.Start.Year(), p.Start.Month()+1, day, 0, 0, 0, 0, time.UTC)
}

// Label renders the period as m/yyyy ex 1/2025
func (p BillingPeriod) Label() string {
	return fmt.Sprintf("%d/%d", int(p.Month()), p.Year())
}

// Overlaps reports whether [from, to] intersects the period.
// A nil to means open ended.
func (p BillingPeriod) Overlaps(from time.Time, to *time.Time) bool {
	if DateOf(from).After(p.End) {
		return false
	}
	if to != nil && DateOf(*to).Before(p.Start) {
		return false
	}
	return true
}

// DateOf truncates t to midnight UTC of the same calendar day
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetweenInclusive counts calendar days in [from, to]; 0 if to is before from
func DaysBetweenInclusive(from, to time.Time) int {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// MonthsBetween is the calendar month difference between from and to,
// ignoring the day of month. Jan 31 to Feb 1 is one month.
func MonthsBetween(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	return (to.Year()*12 + int(to.Month())) - (from.Year()*12 + int(from.Month()))
}
