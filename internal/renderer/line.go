package renderer

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"StockTrends/internal/model"
)

const lineTooltip = `function (p) {
	return p.seriesName + '<br/>' + echarts.time.format(p.value[0], '{yyyy}-{MM}-{dd}') + '<br/>Close: ' + p.value[1];
}`

// LineChart writes an interactive HTML chart of closing prices, one series per stock.
// The chart supports zooming and panning along the date axis.
func LineChart(w io.Writer, table model.Table, style Style) error {
	title := style.title("Closing Prices of Stocks")

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%dpx", style.LineWidthPx),
			Height:    fmt.Sprintf("%dpx", style.LineHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(lineTooltip),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date", Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Close", Type: "value"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "slider", XAxisIndex: []int{0}},
		),
	)

	for _, s := range seriesByStock(table) {
		line.AddSeries(s.stock, s.points)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

type lineSeries struct {
	stock  string
	points []opts.LineData
}

// seriesByStock groups closes per stock in date order, stocks sorted by name.
func seriesByStock(table model.Table) []lineSeries {
	byStock := make(map[string][]model.PriceRecord)
	for _, r := range table {
		if r.Date.Valid && r.Close.Valid {
			byStock[r.Stock] = append(byStock[r.Stock], r)
		}
	}
	stocks := make([]string, 0, len(byStock))
	for s := range byStock {
		stocks = append(stocks, s)
	}
	sort.Strings(stocks)

	out := make([]lineSeries, 0, len(stocks))
	for _, s := range stocks {
		recs := byStock[s]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.Time.Before(recs[j].Date.Time) })
		points := make([]opts.LineData, len(recs))
		for i, r := range recs {
			points[i] = opts.LineData{
				Name:  r.Date.Time.Format("2006-01-02"),
				Value: []interface{}{r.Date.Time.Format("2006-01-02"), r.CloseFloat()},
			}
		}
		out = append(out, lineSeries{stock: s, points: points})
	}
	return out
}
