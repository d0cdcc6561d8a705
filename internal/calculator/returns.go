package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"StockTrends/internal/model"
)

var hundred = decimal.NewFromInt(100)

type yearStock struct {
	year  int
	stock string
}

// AnnualReturns computes, for every (year, stock) group, the percent change from the
// first to the last close of that year in date order. A group with a single record
// yields 0. Groups whose first close is zero have no defined return and are omitted.
// The result is sorted by year, then stock.
func AnnualReturns(table model.Table) []model.AnnualReturn {
	groups := make(map[yearStock][]model.PriceRecord)
	for _, r := range table {
		if !r.Date.Valid || !r.Close.Valid {
			continue
		}
		k := yearStock{r.Date.Time.Year(), r.Stock}
		groups[k] = append(groups[k], r)
	}

	out := make([]model.AnnualReturn, 0, len(groups))
	for k, recs := range groups {
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Date.Time.Before(recs[j].Date.Time)
		})
		first := recs[0].Close.Decimal
		last := recs[len(recs)-1].Close.Decimal
		if first.IsZero() {
			continue
		}
		pct, _ := last.Sub(first).Div(first).Mul(hundred).Float64()
		out = append(out, model.AnnualReturn{Year: k.year, Stock: k.stock, ReturnPct: pct})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Stock < out[j].Stock
	})
	return out
}

// AverageAnnualReturns averages each stock's annual returns over the years it has data for.
// The result is sorted by descending return, ties broken by stock.
func AverageAnnualReturns(annual []model.AnnualReturn) []model.AverageReturn {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range annual {
		sums[a.Stock] += a.ReturnPct
		counts[a.Stock]++
	}

	out := make([]model.AverageReturn, 0, len(sums))
	for stock, sum := range sums {
		out = append(out, model.AverageReturn{
			Stock:     stock,
			ReturnPct: sum / float64(counts[stock]),
			Years:     counts[stock],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReturnPct != out[j].ReturnPct {
			return out[i].ReturnPct > out[j].ReturnPct
		}
		return out[i].Stock < out[j].Stock
	})
	return out
}
