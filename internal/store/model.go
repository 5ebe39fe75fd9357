package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage format for all date columns.
const DateLayout = "2006-01-02"

// Status enumerates the order states accepted by the schema CHECK constraint.
type Status string

const (
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// Statuses returns every valid order status.
func Statuses() []Status {
	return []Status{StatusPaid, StatusCancelled, StatusRefunded}
}

// ValidStatus reports whether s is one of the schema's accepted statuses.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPaid, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Customer is a row in the customers table. Customers are written once by the
// seeder and never updated.
type Customer struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	City       string
	SignupDate time.Time
}

// Order is a row in the orders table. Every order references a seeded
// customer; amounts carry two decimal places.
type Order struct {
	ID         int64
	CustomerID int64
	OrderDate  time.Time
	Category   string
	Amount     decimal.Decimal
	Status     Status
}
