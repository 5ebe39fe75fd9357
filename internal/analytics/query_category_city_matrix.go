package analytics

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// QueryCategoryCityMatrix names the category by city query in artifacts and logs.
const QueryCategoryCityMatrix = "category_city_matrix"

const queryCategoryCityMatrix string = `SELECT c.city, o.category,
       SUM(CASE WHEN o.status = 'PAID' THEN o.amount ELSE 0 END) AS revenue
FROM customers c
JOIN orders o ON o.customer_id = c.customer_id
GROUP BY c.city, o.category
ORDER BY c.city, o.category;`

// CategoryCityRow is the paid revenue of one city and category pair.
type CategoryCityRow struct {
	City     string
	Category string
	Revenue  decimal.Decimal
}

// CategoryCityMatrix returns paid revenue per city and category pair. Pairs
// with orders but no paid orders appear with zero revenue.
func (q *Queries) CategoryCityMatrix(ctx context.Context) ([]CategoryCityRow, error) {
	rows, err := q.db.QueryContext(ctx, queryCategoryCityMatrix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryCityRow
	for rows.Next() {
		item, err := scanCategoryCityRow(rows)
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

func scanCategoryCityRow(rows *sql.Rows) (CategoryCityRow, error) {
	var item CategoryCityRow
	var revenue float64
	if err := rows.Scan(&item.City, &item.Category, &revenue); err != nil {
		return item, err
	}
	item.Revenue = decimal.NewFromFloat(revenue).Round(2)
	return item, nil
}
