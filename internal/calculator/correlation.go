package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"StockTrends/internal/model"
)

// Correlation computes the pairwise Pearson correlation of the return columns.
// The diagonal is 1. An off-diagonal cell is NaN when fewer than two rows exist or
// either column has zero variance; otherwise it is clamped to [-1, 1].
func Correlation(r *model.ReturnMatrix) *model.CorrelationMatrix {
	n := len(r.Stocks)
	cols := make([][]float64, n)
	for j := range cols {
		cols[j] = r.Column(j)
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		values[i][i] = 1
		for j := i + 1; j < n; j++ {
			c := math.NaN()
			if len(r.Close) >= 2 {
				c = clamp(stat.Correlation(cols[i], cols[j], nil))
			}
			values[i][j] = c
			values[j][i] = c
		}
	}
	return &model.CorrelationMatrix{
		Stocks: append([]string(nil), r.Stocks...),
		Values: values,
	}
}

func clamp(c float64) float64 {
	switch {
	case math.IsNaN(c), math.IsInf(c, 0):
		return math.NaN()
	case c > 1:
		return 1
	case c < -1:
		return -1
	}
	return c
}
