package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"StockTrends/internal/model"
)

// ErrDuplicate is returned by Pivot under DuplicateError when two records share a (Date, Stock) key.
var ErrDuplicate = errors.New("duplicate record")

// DuplicatePolicy decides which close wins when a stock has several records on one date.
type DuplicatePolicy string

const (
	DuplicateError DuplicatePolicy = "error"
	DuplicateFirst DuplicatePolicy = "first"
	DuplicateLast  DuplicatePolicy = "last"
)

// ParseDuplicatePolicy validates a policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case DuplicateError, DuplicateFirst, DuplicateLast:
		return p, nil
	case "":
		return DuplicateError, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Pivot lays closing prices out as a date by stock matrix.
// Rows are the distinct dates ascending, columns the distinct stocks sorted by name.
func Pivot(table model.Table, policy DuplicatePolicy) (*model.PriceMatrix, error) {
	dateIdx := make(map[time.Time]int)
	stockIdx := make(map[string]int)
	var dates []time.Time
	var stocks []string
	for _, r := range table {
		if !r.Date.Valid || !r.Close.Valid {
			continue
		}
		d := model.Day(r.Date.Time)
		if _, ok := dateIdx[d]; !ok {
			dateIdx[d] = 0
			dates = append(dates, d)
		}
		if _, ok := stockIdx[r.Stock]; !ok {
			stockIdx[r.Stock] = 0
			stocks = append(stocks, r.Stock)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	sort.Strings(stocks)
	for i, d := range dates {
		dateIdx[d] = i
	}
	for j, s := range stocks {
		stockIdx[s] = j
	}

	m := &model.PriceMatrix{
		Dates:  dates,
		Stocks: stocks,
		Close:  make([][]float64, len(dates)),
	}
	for i := range m.Close {
		row := make([]float64, len(stocks))
		for j := range row {
			row[j] = math.NaN()
		}
		m.Close[i] = row
	}

	for _, r := range table {
		if !r.Date.Valid || !r.Close.Valid {
			continue
		}
		i, j := dateIdx[model.Day(r.Date.Time)], stockIdx[r.Stock]
		if !math.IsNaN(m.Close[i][j]) {
			switch policy {
			case DuplicateFirst:
				continue
			case DuplicateLast:
			default:
				return nil, fmt.Errorf("%w: %s on %s", ErrDuplicate, r.Stock, m.Dates[i].Format("2006-01-02"))
			}
		}
		m.Close[i][j] = r.CloseFloat()
	}
	return m, nil
}

// DailyReturns computes the day-over-day fractional change of every column.
// The first row and every row where any stock lacks a defined change are dropped.
func DailyReturns(m *model.PriceMatrix) *model.ReturnMatrix {
	out := &model.ReturnMatrix{Stocks: append([]string(nil), m.Stocks...)}
	for i := 1; i < len(m.Close); i++ {
		prev, cur := m.Close[i-1], m.Close[i]
		row := make([]float64, len(cur))
		complete := true
		for j := range cur {
			if math.IsNaN(prev[j]) || math.IsNaN(cur[j]) || prev[j] == 0 {
				complete = false
				break
			}
			row[j] = cur[j]/prev[j] - 1
		}
		if !complete {
			continue
		}
		out.Dates = append(out.Dates, m.Dates[i])
		out.Close = append(out.Close, row)
	}
	return out
}
