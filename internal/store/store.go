// Package store opens the shoplab SQLite database and owns its schema.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

const customersDDL = `CREATE TABLE IF NOT EXISTS customers (
    customer_id INTEGER PRIMARY KEY,
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL,
    email       TEXT UNIQUE NOT NULL,
    city        TEXT,
    signup_date TEXT NOT NULL
);`

const ordersDDL = `CREATE TABLE IF NOT EXISTS orders (
    order_id    INTEGER PRIMARY KEY,
    customer_id INTEGER NOT NULL,
    order_date  TEXT NOT NULL,
    category    TEXT NOT NULL,
    amount      REAL NOT NULL,
    status      TEXT NOT NULL CHECK (status IN ('PAID', 'CANCELLED', 'REFUNDED')),
    FOREIGN KEY (customer_id) REFERENCES customers (customer_id)
);`

var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (order_date);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);`,
}

// Open connects to the SQLite file at path. The pool is capped at a single
// connection: stages run strictly sequentially, and the cap keeps session
// pragmas (and :memory: databases) stable across calls.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys on %s: %w", path, err)
	}
	return db, nil
}

// EnsureSchema creates the customers and orders tables. Safe to call on an
// already-initialized database.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{customersDDL, ordersDDL} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// EnsureIndexes creates the secondary indexes on orders. Safe to re-run.
func EnsureIndexes(ctx context.Context, db *sql.DB) error {
	for _, ddl := range indexDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// CountCustomers returns the number of rows in the customers table.
func CountCustomers(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers;").Scan(&n); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

// IndexNames lists the orders indexes recorded in sqlite_master.
func IndexNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'orders' AND name NOT LIKE 'sqlite_%' ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan index name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	return names, nil
}
