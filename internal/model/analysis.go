package model

import "time"

// AnnualReturn is the percent change from first to last close of a stock within one calendar year.
type AnnualReturn struct {
	Year      int
	Stock     string
	ReturnPct float64
}

// AverageReturn is the mean of a stock's annual returns.
type AverageReturn struct {
	Stock     string
	ReturnPct float64
	Years     int
}

// PriceMatrix holds closing prices indexed by date (rows) and stock (columns).
// A NaN cell means the stock has no record on that date.
type PriceMatrix struct {
	Dates  []time.Time
	Stocks []string
	Close  [][]float64
}

// Column returns the values of column j.
func (m *PriceMatrix) Column(j int) []float64 {
	col := make([]float64, len(m.Close))
	for i, row := range m.Close {
		col[i] = row[j]
	}
	return col
}

// ReturnMatrix holds day-over-day fractional changes, same layout as PriceMatrix.
type ReturnMatrix = PriceMatrix

// CorrelationMatrix is the symmetric stock by stock Pearson correlation of daily returns.
type CorrelationMatrix struct {
	Stocks []string
	Values [][]float64
}

// At returns the correlation between stocks a and b.
func (c *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, s := range c.Stocks {
		if s == a {
			i = k
		}
		if s == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Values[i][j], true
}
