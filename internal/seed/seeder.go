package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/electwix/shoplab/internal/logging"
	"github.com/electwix/shoplab/internal/profile"
	"github.com/electwix/shoplab/internal/store"
)

const (
	insertCustomerSQL = `INSERT INTO customers (customer_id, first_name, last_name, email, city, signup_date) VALUES (?, ?, ?, ?, ?, ?)`
	insertOrderSQL    = `INSERT INTO orders (order_id, customer_id, order_date, category, amount, status) VALUES (?, ?, ?, ?, ?, ?)`
)

// Default dataset sizes used when Options leaves them unset.
const (
	DefaultCustomers = 300
	DefaultOrders    = 2000
)

// Seeder loads generated rows into a database.
type Seeder struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Options control a seeding run. Customers falls back to DefaultCustomers
// when not positive. Orders falls back to DefaultOrders only when negative;
// zero seeds no orders.
type Options struct {
	Customers int
	Orders    int
	Seed      uint64
}

// Stats reports what a seeding run did.
type Stats struct {
	Customers int
	Orders    int
	Skipped   bool
}

// Run seeds the database unless the customers table already holds rows, in
// which case it skips without error. Customers and orders are inserted in one
// transaction; the secondary indexes are built afterwards.
func (s *Seeder) Run(ctx context.Context, prof profile.Profile, opts Options) (Stats, error) {
	var stats Stats

	nCustomers := opts.Customers
	if nCustomers <= 0 {
		nCustomers = DefaultCustomers
	}
	nOrders := opts.Orders
	if nOrders < 0 {
		nOrders = DefaultOrders
	}

	count, err := store.CountCustomers(ctx, s.DB)
	if err != nil {
		return stats, err
	}
	if count > 0 {
		s.logger().Info("database already seeded, skipping", slog.Int64("existing_customers", count))
		stats.Skipped = true
		return stats, nil
	}

	gen := NewGenerator(prof, opts.Seed)
	customers := gen.Customers(nCustomers)
	orders := gen.Orders(nOrders, nCustomers)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertCustomers(ctx, tx, customers); err != nil {
		return stats, err
	}
	if err := insertOrders(ctx, tx, orders); err != nil {
		return stats, err
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit seed transaction: %w", err)
	}

	if err := store.EnsureIndexes(ctx, s.DB); err != nil {
		return stats, err
	}

	stats.Customers = len(customers)
	stats.Orders = len(orders)
	s.logger().Info("seeded database",
		slog.Int("customers", stats.Customers),
		slog.Int("orders", stats.Orders))
	return stats, nil
}

func (s *Seeder) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}

func insertCustomers(ctx context.Context, tx *sql.Tx, customers []store.Customer) error {
	stmt, err := tx.PrepareContext(ctx, insertCustomerSQL)
	if err != nil {
		return fmt.Errorf("prepare customer insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range customers {
		_, err := stmt.ExecContext(ctx, c.ID, c.FirstName, c.LastName, c.Email, c.City, c.SignupDate.Format(store.DateLayout))
		if err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	return nil
}

func insertOrders(ctx context.Context, tx *sql.Tx, orders []store.Order) error {
	stmt, err := tx.PrepareContext(ctx, insertOrderSQL)
	if err != nil {
		return fmt.Errorf("prepare order insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		_, err := stmt.ExecContext(ctx, o.ID, o.CustomerID, o.OrderDate.Format(store.DateLayout), o.Category, o.Amount.InexactFloat64(), string(o.Status))
		if err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
	}
	return nil
}
