package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"StockTrends/internal/model"
)

var (
	// ErrParse marks a cell or file that could not be parsed as tabular price data.
	ErrParse = errors.New("parse error")
	// ErrMissingColumn marks a file lacking one of the required columns.
	ErrMissingColumn = errors.New("missing column")
)

// RequiredColumns must be present in every input file.
var RequiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

// naTokens are cell values read as "no value".
var naTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// IsNA reports whether a cell holds no value.
func IsNA(cell string) bool { return naTokens[strings.ToLower(strings.TrimSpace(cell))] }

// ParseRecords converts the rows of sheet into price records tagged with symbol.
// The header must carry every required column, even when there are no rows.
// Missing cells become invalid (null) fields; malformed numbers are errors.
func ParseRecords(sheet *Sheet, symbol string) (model.Table, error) {
	have := make(map[string]bool, len(sheet.Header))
	for _, h := range sheet.Header {
		have[h] = true
	}
	for _, col := range RequiredColumns {
		if !have[col] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	out := make(model.Table, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rec := model.PriceRecord{Stock: symbol}
		if !IsNA(row["date"]) {
			rec.RawDate = row["date"]
		}

		prices := []struct {
			col string
			dst *decimal.NullDecimal
		}{
			{"open", &rec.Open},
			{"high", &rec.High},
			{"low", &rec.Low},
			{"close", &rec.Close},
		}
		for _, p := range prices {
			v, err := parsePrice(row[p.col])
			if err != nil {
				// +2: header line plus 1-based numbering
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrParse, i+2, p.col, err)
			}
			*p.dst = v
		}

		vol, err := parseVolume(row["volume"])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d column volume: %v", ErrParse, i+2, err)
		}
		rec.Volume = vol

		out = append(out, rec)
	}
	return out, nil
}

func parsePrice(cell string) (decimal.NullDecimal, error) {
	if IsNA(cell) {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(cell, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid number %q", cell)
	}
	return decimal.NewNullDecimal(d), nil
}

func parseVolume(cell string) (null.Int, error) {
	if IsNA(cell) {
		return null.Int{}, nil
	}
	clean := strings.ReplaceAll(cell, ",", "")
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return null.IntFrom(n), nil
	}
	// Spreadsheets often store integers as "1200.0".
	d, err := decimal.NewFromString(clean)
	if err != nil || !d.IsInteger() {
		return null.Int{}, fmt.Errorf("invalid integer %q", cell)
	}
	return null.IntFrom(d.IntPart()), nil
}
