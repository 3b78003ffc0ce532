package customer

import (
	"time"

	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

// Customer is a subscriber account and its billing standing
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `db:"id" json:"id"`

	// UserID links the customer to the login that receives notifications
	UserID string `db:"user_id" json:"user_id"`

	// Name is the name of the customer
	Name string `db:"name" json:"name"`

	// Address is the delivery and billing address
	Address string `db:"address" json:"address"`

	// Phone is the contact number of the customer
	Phone string `db:"phone" json:"phone"`

	// Email is where EMAIL notifications are delivered
	Email string `db:"email" json:"email"`

	// OutstandingDue is the sum of the customer's overdue invoice totals
	OutstandingDue decimal.Decimal `db:"outstanding_due" json:"outstanding_due" swaggertype:"string"`

	// DueSince is the due date of the first invoice that went overdue, unset when settled
	DueSince *time.Time `db:"due_since" json:"due_since,omitempty"`

	// Status is the billing standing of the customer
	Status types.CustomerStatus `db:"status" json:"status"`

	types.BaseModel
}

// TransitionTo moves the customer to next, rejecting illegal moves
func (c *Customer) TransitionTo(next types.CustomerStatus) error {
	status, err := c.Status.TransitionTo(next)
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

// MarkOverdueSince records the first overdue date. It never moves an existing value.
func (c *Customer) MarkOverdueSince(dueDate time.Time) bool {
	if c.DueSince != nil {
		return false
	}
	d := dueDate.UTC()
	c.DueSince = &d
	return true
}

// MonthsOverdue is the calendar month distance between DueSince and now
func (c *Customer) MonthsOverdue(now time.Time) int {
	if c.DueSince == nil {
		return 0
	}
	return types.MonthsBetween(*c.DueSince, now)
}

// Settle clears the dues once no unpaid invoice remains and lifts a suspension
func (c *Customer) Settle() (reactivated bool) {
	c.OutstandingDue = decimal.Zero
	c.DueSince = nil
	if c.Status == types.CustomerStatusSuspended {
		c.Status = types.CustomerStatusActive
		return true
	}
	return false
}

func (c *Customer) IsDiscontinued() bool {
	return c.Status == types.CustomerStatusDiscontinued
}
