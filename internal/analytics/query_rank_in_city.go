package analytics

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// QueryRankInCity names the per-city ranking query in artifacts and logs.
const QueryRankInCity = "window_rank_in_city"

const queryRankInCity string = `SELECT city, customer, revenue, rn FROM (
  SELECT c.city AS city,
         c.first_name || ' ' || c.last_name AS customer,
         SUM(CASE WHEN o.status = 'PAID' THEN o.amount ELSE 0 END) AS revenue,
         ROW_NUMBER() OVER (
           PARTITION BY c.city
           ORDER BY SUM(CASE WHEN o.status = 'PAID' THEN o.amount ELSE 0 END) DESC, c.customer_id
         ) AS rn
  FROM customers c
  JOIN orders o ON o.customer_id = c.customer_id
  GROUP BY c.city, c.customer_id
) t
WHERE rn <= 3
ORDER BY city, rn;`

// CityRankRow is one customer's rank within their city by paid revenue.
type CityRankRow struct {
	City     string
	Customer string
	Revenue  decimal.Decimal
	Rank     int64
}

// RankInCity returns the top three customers per city by paid revenue. Ties
// break on customer id, so ranks are stable for a given dataset.
func (q *Queries) RankInCity(ctx context.Context) ([]CityRankRow, error) {
	rows, err := q.db.QueryContext(ctx, queryRankInCity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CityRankRow
	for rows.Next() {
		item, err := scanCityRankRow(rows)
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

func scanCityRankRow(rows *sql.Rows) (CityRankRow, error) {
	var item CityRankRow
	var revenue float64
	if err := rows.Scan(&item.City, &item.Customer, &revenue, &item.Rank); err != nil {
		return item, err
	}
	item.Revenue = decimal.NewFromFloat(revenue).Round(2)
	return item, nil
}
