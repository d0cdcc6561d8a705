package renderer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"StockTrends/internal/calculator"
	"StockTrends/internal/model"
)

// Chart names accepted in Renderer.Charts.
const (
	ChartLine    = "line"
	ChartBar     = "bar"
	ChartHeatmap = "heatmap"
)

// Output file names inside Renderer.OutDir.
const (
	LineFile    = "closing_prices.html"
	BarFile     = "average_annual_returns.png"
	HeatmapFile = "correlation_heatmap.png"
)

// Renderer writes the chart files of one run.
type Renderer struct {
	OutDir string
	Style  Style
	Charts []string
	Log    zerolog.Logger
}

// NewRenderer creates a Renderer producing every chart.
func NewRenderer(outDir string, style Style, log zerolog.Logger) *Renderer {
	return &Renderer{
		OutDir: outDir,
		Style:  style,
		Charts: []string{ChartLine, ChartBar, ChartHeatmap},
		Log:    log,
	}
}

func (r *Renderer) enabled(name string) bool {
	for _, c := range r.Charts {
		if c == name {
			return true
		}
	}
	return false
}

// RenderAll writes each enabled chart and returns the paths written.
func (r *Renderer) RenderAll(ctx context.Context, table model.Table, tr *calculator.Transformation) ([]string, error) {
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	jobs := []struct {
		name   string
		file   string
		render func(io.Writer) error
	}{
		{ChartLine, LineFile, func(w io.Writer) error { return LineChart(w, table, r.Style) }},
		{ChartBar, BarFile, func(w io.Writer) error { return BarChart(w, tr.Averages, r.Style) }},
		{ChartHeatmap, HeatmapFile, func(w io.Writer) error { return Heatmap(w, tr.Correlation, r.Style) }},
	}

	var written []string
	for _, j := range jobs {
		if !r.enabled(j.name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(r.OutDir, j.file)
		if err := writeFile(path, j.render); err != nil {
			return written, fmt.Errorf("%s chart: %w", j.name, err)
		}
		r.Log.Info().Str("chart", j.name).Str("path", path).Msg("chart written")
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
