package renderer

import (
	"bytes"
	"context"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTrends/internal/calculator"
	"StockTrends/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func rec(stock, date string, px float64) model.PriceRecord {
	t, _ := time.Parse("2006-01-02", date)
	d := decimal.NewNullDecimal(decimal.NewFromFloat(px))
	return model.PriceRecord{
		RawDate: date,
		Date:    null.TimeFrom(t),
		Open:    d,
		High:    d,
		Low:     d,
		Close:   d,
		Volume:  null.IntFrom(100),
		Stock:   stock,
	}
}

func sampleTable() model.Table {
	return model.Table{
		rec("AAA", "2020-01-02", 100),
		rec("AAA", "2020-01-03", 105),
		rec("AAA", "2020-12-31", 110),
		rec("BBB", "2020-01-02", 50),
		rec("BBB", "2020-01-03", 51),
		rec("BBB", "2020-12-31", 55),
	}
}

func TestPeriod(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2019 - Present", Period(model.Window{Start: start, End: now}, now))
	assert.Equal(t, "2019 - 2023", Period(model.Window{Start: start, End: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}, now))
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#3cb371")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x3c), c.R)
	assert.Equal(t, uint8(0xb3), c.G)
	assert.Equal(t, uint8(0x71), c.B)
	assert.Equal(t, uint8(0xff), c.A)

	_, err = ParseHexColor("green")
	assert.Error(t, err)
}

func TestParseHexColorAllHexcolorForms(t *testing.T) {
	tests := map[string]color.RGBA{
		"#0f0":      {R: 0x00, G: 0xff, B: 0x00, A: 0xff},
		"#0f08":     {R: 0x00, G: 0xff, B: 0x00, A: 0x88},
		"#3cb371":   {R: 0x3c, G: 0xb3, B: 0x71, A: 0xff},
		"#3cb37180": {R: 0x3c, G: 0xb3, B: 0x71, A: 0x80},
	}
	for in, want := range tests {
		got, err := ParseHexColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"#12345", "#ggg", ""} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestLineChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, LineChart(&buf, sampleTable(), DefaultStyle()))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Closing Prices of Stocks")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
	assert.Contains(t, out, "dataZoom")
}

func TestSeriesByStockOrdersDates(t *testing.T) {
	table := model.Table{
		rec("BBB", "2020-01-03", 2),
		rec("AAA", "2020-01-03", 2),
		rec("AAA", "2020-01-02", 1),
	}
	series := seriesByStock(table)
	require.Len(t, series, 2)
	assert.Equal(t, "AAA", series[0].stock)
	assert.Equal(t, "2020-01-02", series[0].points[0].Name)
	assert.Equal(t, "2020-01-03", series[0].points[1].Name)
}

func TestBarChart(t *testing.T) {
	var buf bytes.Buffer
	averages := []model.AverageReturn{
		{Stock: "BBB", ReturnPct: 5, Years: 1},
		{Stock: "AAA", ReturnPct: 10, Years: 1},
	}
	require.NoError(t, BarChart(&buf, averages, DefaultStyle()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestBarChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BarChart(&buf, nil, DefaultStyle()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestSortedAverages(t *testing.T) {
	in := []model.AverageReturn{
		{Stock: "CCC", ReturnPct: 1},
		{Stock: "BBB", ReturnPct: 7},
		{Stock: "AAA", ReturnPct: 7},
	}
	out := sortedAverages(in)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, []string{out[0].Stock, out[1].Stock, out[2].Stock})
	assert.Equal(t, "CCC", in[0].Stock, "input must not be reordered")
}

func TestHeatmap(t *testing.T) {
	corr := &model.CorrelationMatrix{
		Stocks: []string{"AAA", "BBB"},
		Values: [][]float64{{1, -0.5}, {-0.5, 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, Heatmap(&buf, corr, DefaultStyle()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestHeatmapUndefinedCells(t *testing.T) {
	corr := &model.CorrelationMatrix{
		Stocks: []string{"AAA", "BBB"},
		Values: [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, Heatmap(&buf, corr, DefaultStyle()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCorrGridOrientation(t *testing.T) {
	g := corrGrid{&model.CorrelationMatrix{
		Stocks: []string{"AAA", "BBB"},
		Values: [][]float64{{1, 0.2}, {0.3, 1}},
	}}
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	// top row of the plot is the first stock
	assert.Equal(t, 0.2, g.Z(1, 1))
	assert.Equal(t, 0.3, g.Z(0, 0))
}

func TestWriteMissing(t *testing.T) {
	var buf bytes.Buffer
	missing := model.MissingCounts{model.FieldClose: 3}
	require.NoError(t, WriteMissing(&buf, missing))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(model.Fields))
	assert.Contains(t, buf.String(), "Close")
	assert.Regexp(t, `Close\s+3`, buf.String())
}

func TestSummaryMarkdown(t *testing.T) {
	out := SummaryMarkdown(SummaryData{
		Period:       "2019 - Present",
		Files:        2,
		RawRecords:   1500,
		CleanRecords: 1498,
		Missing:      model.MissingCounts{model.FieldClose: 2},
		Averages:     []model.AverageReturn{{Stock: "AAA", ReturnPct: 10, Years: 1}},
		Correlation: &model.CorrelationMatrix{
			Stocks: []string{"AAA", "BBB"},
			Values: [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
		},
		Artifacts: []string{"out/closing_prices.html"},
	})

	assert.Contains(t, out, "# Stock Analysis (2019 - Present)")
	assert.Contains(t, out, "1,500 records read")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "out/closing_prices.html")
}

func TestSummaryMarkdownEmpty(t *testing.T) {
	out := SummaryMarkdown(SummaryData{Period: "2019 - Present", Correlation: &model.CorrelationMatrix{}})
	assert.Contains(t, out, "No annual returns could be computed.")
	assert.Contains(t, out, "No stocks to correlate.")
}

func TestRenderAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tr, err := calculator.Transform(sampleTable(), calculator.DuplicateError)
	require.NoError(t, err)

	r := NewRenderer(dir, DefaultStyle(), zerolog.Nop())
	paths, err := r.RenderAll(context.Background(), sampleTable(), tr)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, LineFile),
		filepath.Join(dir, BarFile),
		filepath.Join(dir, HeatmapFile),
	}, paths)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRenderAllSelectedCharts(t *testing.T) {
	dir := t.TempDir()
	tr, err := calculator.Transform(sampleTable(), calculator.DuplicateError)
	require.NoError(t, err)

	r := NewRenderer(dir, DefaultStyle(), zerolog.Nop())
	r.Charts = []string{ChartBar}
	paths, err := r.RenderAll(context.Background(), sampleTable(), tr)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, BarFile)}, paths)

	_, err = os.Stat(filepath.Join(dir, LineFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderAllCanceled(t *testing.T) {
	tr, err := calculator.Transform(sampleTable(), calculator.DuplicateError)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRenderer(t.TempDir(), DefaultStyle(), zerolog.Nop()).RenderAll(ctx, sampleTable(), tr)
	assert.ErrorIs(t, err, context.Canceled)
}
