// Package analytics runs the fixed analytical queries over the shop dataset.
package analytics

import (
	"context"
	"database/sql"
)

// Querier is the full set of analytical queries.
type Querier interface {
	TopCustomers(ctx context.Context) ([]TopCustomerRow, error)
	MonthlyRevenue(ctx context.Context) ([]MonthlyRevenueRow, error)
	CategoryCityMatrix(ctx context.Context) ([]CategoryCityRow, error)
	RankInCity(ctx context.Context) ([]CityRankRow, error)
}

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs the analytical queries against a DBTX.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

var _ Querier = (*Queries)(nil)

// CatalogEntry pairs a query name with its SQL text.
type CatalogEntry struct {
	Name string
	SQL  string
}

// Catalog lists the demo queries in execution order.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: QueryTopCustomers, SQL: queryTopCustomers},
		{Name: QueryMonthlyRevenue, SQL: queryMonthlyRevenue},
		{Name: QueryCategoryCityMatrix, SQL: queryCategoryCityMatrix},
		{Name: QueryRankInCity, SQL: queryRankInCity},
	}
}
