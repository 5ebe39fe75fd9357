package analytics

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// QueryTopCustomers names the top customers query in artifacts and logs.
const QueryTopCustomers = "top_customers"

const queryTopCustomers string = `SELECT c.customer_id,
       c.first_name || ' ' || c.last_name AS customer,
       c.city,
       SUM(CASE WHEN o.status = 'PAID' THEN o.amount ELSE 0 END) AS revenue
FROM customers c
JOIN orders o ON o.customer_id = c.customer_id
GROUP BY c.customer_id, customer, c.city
HAVING revenue > 0
ORDER BY revenue DESC, c.customer_id
LIMIT 10;`

// TopCustomerRow is one customer ranked by paid revenue.
type TopCustomerRow struct {
	CustomerID int64
	Customer   string
	City       string
	Revenue    decimal.Decimal
}

// TopCustomers returns the ten highest-revenue customers, paid orders only.
// Ties break on customer id.
func (q *Queries) TopCustomers(ctx context.Context) ([]TopCustomerRow, error) {
	rows, err := q.db.QueryContext(ctx, queryTopCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopCustomerRow
	for rows.Next() {
		item, err := scanTopCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanTopCustomerRow(rows *sql.Rows) (TopCustomerRow, error) {
	var item TopCustomerRow
	var revenue float64
	if err := rows.Scan(&item.CustomerID, &item.Customer, &item.City, &revenue); err != nil {
		return item, err
	}
	item.Revenue = decimal.NewFromFloat(revenue).Round(2)
	return item, nil
}
