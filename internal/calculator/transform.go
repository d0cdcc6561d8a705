package calculator

import (
	"fmt"

	"StockTrends/internal/model"
)

// Transformation holds every table derived from a cleaned price table.
type Transformation struct {
	Annual      []model.AnnualReturn
	Averages    []model.AverageReturn
	Prices      *model.PriceMatrix
	Returns     *model.ReturnMatrix
	Correlation *model.CorrelationMatrix
}

// Transform derives annual returns and the daily-return correlation from a cleaned table.
// It is a pure function of its input.
func Transform(table model.Table, policy DuplicatePolicy) (*Transformation, error) {
	annual := AnnualReturns(table)

	prices, err := Pivot(table, policy)
	if err != nil {
		return nil, fmt.Errorf("pivot: %w", err)
	}
	returns := DailyReturns(prices)

	return &Transformation{
		Annual:      annual,
		Averages:    AverageAnnualReturns(annual),
		Prices:      prices,
		Returns:     returns,
		Correlation: Correlation(returns),
	}, nil
}
