package renderer

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"

	"StockTrends/internal/model"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
// Row 0 of the plot is the last stock so the first stock is drawn on top.
type corrGrid struct{ m *model.CorrelationMatrix }

func (g corrGrid) Dims() (c, r int) { return len(g.m.Stocks), len(g.m.Stocks) }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[len(g.m.Stocks)-1-r][c] }
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }
func (g corrGrid) Min() float64 { return -1 }
func (g corrGrid) Max() float64 { return 1 }

// Heatmap writes a PNG heatmap of the correlation matrix on a blue-red diverging scale
// fixed to [-1, 1], each cell annotated with its value.
func Heatmap(w io.Writer, corr *model.CorrelationMatrix, style Style) error {
	p := plot.New()
	applyTitle(p, style.title("Stock Correlation Heatmap"), style)

	n := len(corr.Stocks)
	if n > 0 {
		cm := moreland.SmoothBlueRed()
		cm.SetMin(-1)
		cm.SetMax(1)

		grid := corrGrid{corr}
		hm := plotter.NewHeatMap(grid, cm.Palette(255))
		hm.Min, hm.Max = -1, 1
		hm.NaN = color.Gray{Y: 0xdd}
		p.Add(hm)

		labels, err := cellLabels(grid)
		if err != nil {
			return fmt.Errorf("heatmap labels: %w", err)
		}
		p.Add(labels)

		reversed := make([]string, n)
		for i, s := range corr.Stocks {
			reversed[n-1-i] = s
		}
		p.NominalX(corr.Stocks...)
		p.NominalY(reversed...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}

	return writePNG(w, p, style.HeatmapWidthIn, style.HeatmapHeight)
}

func cellLabels(g corrGrid) (*plotter.Labels, error) {
	c, r := g.Dims()
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, c*r),
		Labels: make([]string, 0, c*r),
	}
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			xyl.XYs = append(xyl.XYs, plotter.XY{X: g.X(i), Y: g.Y(j)})
			xyl.Labels = append(xyl.Labels, annotation(g.Z(i, j)))
		}
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for k := range labels.TextStyle {
		labels.TextStyle[k].XAlign = text.XCenter
		labels.TextStyle[k].YAlign = text.YCenter
		if v := g.Z(k/r, k%r); !math.IsNaN(v) && math.Abs(v) > 0.6 {
			labels.TextStyle[k].Color = color.White
		}
	}
	return labels, nil
}

func annotation(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
