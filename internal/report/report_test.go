package report

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/electwix/shoplab/internal/analytics"
)

func TestWriteTableAligned(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := Table{
		Header: []string{"a", "bb"},
		Rows:   [][]string{{"ccc", "d"}},
	}
	if err := WriteTable(&buf, "demo", table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	want := "\n[Query] demo\na    bb\nccc  d\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteTable() output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTableTruncates(t *testing.T) {
	t.Parallel()

	table := Table{Header: []string{"n"}}
	for i := 0; i < 12; i++ {
		table.Rows = append(table.Rows, []string{strings.Repeat("x", i+1)})
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, "big", table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "(12 rows, showing first 10)") {
		t.Errorf("missing truncation note in output:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 11)) {
		t.Errorf("row beyond the preview limit leaked into output:\n%s", out)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteTable(&buf, "empty", Table{Header: []string{"a"}}); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if !strings.Contains(buf.String(), "(no rows)") {
		t.Errorf("expected empty marker, got:\n%s", buf.String())
	}
}

func TestTableBuilders(t *testing.T) {
	t.Parallel()

	revenue := decimal.RequireFromString("150.5")

	top := TopCustomersTable([]analytics.TopCustomerRow{
		{CustomerID: 3, Customer: "Ana Soto", City: "Santiago", Revenue: revenue},
	})
	wantTop := Table{
		Header: []string{"customer_id", "customer", "city", "revenue"},
		Rows:   [][]string{{"3", "Ana Soto", "Santiago", "150.50"}},
	}
	if diff := cmp.Diff(wantTop, top); diff != "" {
		t.Errorf("TopCustomersTable() mismatch (-want +got):\n%s", diff)
	}

	monthly := MonthlyRevenueTable([]analytics.MonthlyRevenueRow{
		{Month: "2023-06", Revenue: revenue},
	})
	wantMonthly := Table{
		Header: []string{"ym", "revenue"},
		Rows:   [][]string{{"2023-06", "150.50"}},
	}
	if diff := cmp.Diff(wantMonthly, monthly); diff != "" {
		t.Errorf("MonthlyRevenueTable() mismatch (-want +got):\n%s", diff)
	}

	matrix := CategoryCityTable([]analytics.CategoryCityRow{
		{City: "Santiago", Category: "Books", Revenue: revenue},
	})
	wantMatrix := Table{
		Header: []string{"city", "category", "revenue"},
		Rows:   [][]string{{"Santiago", "Books", "150.50"}},
	}
	if diff := cmp.Diff(wantMatrix, matrix); diff != "" {
		t.Errorf("CategoryCityTable() mismatch (-want +got):\n%s", diff)
	}

	ranks := RankInCityTable([]analytics.CityRankRow{
		{City: "Santiago", Customer: "Ana Soto", Revenue: revenue, Rank: 1},
	})
	wantRanks := Table{
		Header: []string{"city", "customer", "revenue", "rn"},
		Rows:   [][]string{{"Santiago", "Ana Soto", "150.50", "1"}},
	}
	if diff := cmp.Diff(wantRanks, ranks); diff != "" {
		t.Errorf("RankInCityTable() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderMonthlyRevenue(t *testing.T) {
	t.Parallel()

	rows := []analytics.MonthlyRevenueRow{
		{Month: "2023-06", Revenue: decimal.RequireFromString("230.00")},
		{Month: "2023-07", Revenue: decimal.RequireFromString("180.25")},
		{Month: "2023-08", Revenue: decimal.RequireFromString("310.80")},
	}

	data, err := RenderMonthlyRevenue(rows)
	if err != nil {
		t.Fatalf("RenderMonthlyRevenue() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("RenderMonthlyRevenue() returned no bytes")
	}

	magic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if !bytes.HasPrefix(data, magic) {
		t.Fatalf("output does not start with the PNG signature: % x", data[:min(len(data), 8)])
	}

	config, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not decodable PNG: %v", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		t.Fatalf("decoded PNG has degenerate size %dx%d", config.Width, config.Height)
	}
}

func TestRenderMonthlyRevenueEmpty(t *testing.T) {
	t.Parallel()

	if _, err := RenderMonthlyRevenue(nil); err == nil {
		t.Fatal("RenderMonthlyRevenue() accepted an empty series")
	}
}
