package analytics

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// QueryMonthlyRevenue names the monthly revenue query in artifacts and logs.
const QueryMonthlyRevenue = "monthly_revenue"

const queryMonthlyRevenue string = `SELECT strftime('%Y-%m', o.order_date) AS ym,
       SUM(o.amount) AS revenue
FROM orders o
WHERE o.status = 'PAID'
GROUP BY ym
ORDER BY ym;`

// MonthlyRevenueRow is the paid revenue of one calendar month.
type MonthlyRevenueRow struct {
	Month   string
	Revenue decimal.Decimal
}

// MonthlyRevenue returns paid revenue per month, ascending by month. Months
// without paid orders do not appear.
func (q *Queries) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenueRow, error) {
	rows, err := q.db.QueryContext(ctx, queryMonthlyRevenue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthlyRevenueRow
	for rows.Next() {
		item, err := scanMonthlyRevenueRow(rows)
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

func scanMonthlyRevenueRow(rows *sql.Rows) (MonthlyRevenueRow, error) {
	var item MonthlyRevenueRow
	var revenue float64
	if err := rows.Scan(&item.Month, &revenue); err != nil {
		return item, err
	}
	item.Revenue = decimal.NewFromFloat(revenue).Round(2)
	return item, nil
}
