// Package report renders query results as text previews and charts.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/electwix/shoplab/internal/analytics"
)

// RenderMonthlyRevenue draws the monthly revenue series as a line-with-points
// chart and returns the encoded PNG. Months label the X axis in row order.
func RenderMonthlyRevenue(rows []analytics.MonthlyRevenueRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errors.New("render monthly revenue: no rows to plot")
	}

	p := plot.New()
	p.Title.Text = "Monthly revenue (status=PAID)"
	p.X.Label.Text = "Year-Month"
	p.Y.Label.Text = "Revenue"

	points := make(plotter.XYs, len(rows))
	ticks := make([]plot.Tick, len(rows))
	for i, row := range rows {
		points[i] = plotter.XY{X: float64(i), Y: row.Revenue.InexactFloat64()}
		ticks[i] = plot.Tick{Value: float64(i), Label: row.Month}
	}

	line, scatter, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, fmt.Errorf("render monthly revenue: %w", err)
	}
	p.Add(line, scatter)

	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	writerTo, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("render monthly revenue: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writerTo.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render monthly revenue: %w", err)
	}
	return buf.Bytes(), nil
}
