package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/electwix/shoplab/internal/analytics"
)

const previewLimit = 10

// Table is a tabular query preview.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteTable writes a `[Query] name` banner and up to ten rows of table as
// aligned columns.
func WriteTable(w io.Writer, name string, table Table) error {
	if _, err := fmt.Fprintf(w, "\n[Query] %s\n", name); err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Header, "\t"))
	limit := min(len(table.Rows), previewLimit)
	for _, row := range table.Rows[:limit] {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(table.Rows) > previewLimit {
		if _, err := fmt.Fprintf(w, "(%d rows, showing first %d)\n", len(table.Rows), previewLimit); err != nil {
			return err
		}
	}
	return nil
}

// TopCustomersTable projects top customer rows for preview.
func TopCustomersTable(rows []analytics.TopCustomerRow) Table {
	t := Table{Header: []string{"customer_id", "customer", "city", "revenue"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.CustomerID, 10), r.Customer, r.City, r.Revenue.StringFixed(2),
		})
	}
	return t
}

// MonthlyRevenueTable projects monthly revenue rows for preview.
func MonthlyRevenueTable(rows []analytics.MonthlyRevenueRow) Table {
	t := Table{Header: []string{"ym", "revenue"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Month, r.Revenue.StringFixed(2)})
	}
	return t
}

// CategoryCityTable projects city and category rows for preview.
func CategoryCityTable(rows []analytics.CategoryCityRow) Table {
	t := Table{Header: []string{"city", "category", "revenue"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.City, r.Category, r.Revenue.StringFixed(2)})
	}
	return t
}

// RankInCityTable projects per-city ranking rows for preview.
func RankInCityTable(rows []analytics.CityRankRow) Table {
	t := Table{Header: []string{"city", "customer", "revenue", "rn"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.City, r.Customer, r.Revenue.StringFixed(2), strconv.FormatInt(r.Rank, 10),
		})
	}
	return t
}
