package renderer

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"StockTrends/internal/model"
)

// BarChart writes a PNG bar chart of average annual returns, highest first.
func BarChart(w io.Writer, averages []model.AverageReturn, style Style) error {
	p := plot.New()
	applyTitle(p, style.title("Average Annual Returns"), style)
	p.X.Label.Text = "Stock"
	p.Y.Label.Text = "Average Annual Return (%)"
	p.X.Label.TextStyle.Font.Size = vg.Points(style.LabelFontSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(style.LabelFontSize)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = color.Gray{Y: 0xb0}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(grid)

	sorted := sortedAverages(averages)
	if len(sorted) > 0 {
		values := make(plotter.Values, len(sorted))
		names := make([]string, len(sorted))
		for i, a := range sorted {
			values[i] = a.ReturnPct
			names[i] = a.Stock
		}
		width := vg.Length(style.BarWidthIn) * vg.Inch * 0.8 / vg.Length(len(sorted)+1)
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("bar chart: %w", err)
		}
		bars.Color = style.BarColor
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(names...)
	}

	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	return writePNG(w, p, style.BarWidthIn, style.BarHeightIn)
}

// sortedAverages returns a copy sorted by descending return, ties by stock.
func sortedAverages(in []model.AverageReturn) []model.AverageReturn {
	out := append([]model.AverageReturn(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReturnPct != out[j].ReturnPct {
			return out[i].ReturnPct > out[j].ReturnPct
		}
		return out[i].Stock < out[j].Stock
	})
	return out
}

func applyTitle(p *plot.Plot, title string, style Style) {
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(style.TitleFontSize)
}

func writePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	wt, err := p.WriterTo(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
