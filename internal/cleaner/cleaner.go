package cleaner

import (
	"errors"
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"StockTrends/internal/model"
)

// ErrDate marks a date cell that matches none of the accepted layouts.
var ErrDate = errors.New("unparseable date")

// dateLayouts are tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseDate parses a date cell into a calendar day at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDate, s)
}

// ParseDates fills Date from RawDate on every record. Empty RawDate leaves Date null.
// The input table is not modified.
func ParseDates(table model.Table) (model.Table, error) {
	out := make(model.Table, len(table))
	for i, r := range table {
		if r.RawDate != "" {
			t, err := ParseDate(r.RawDate)
			if err != nil {
				return nil, fmt.Errorf("%s record %d: %w", r.Stock, i, err)
			}
			r.Date = null.TimeFrom(t)
		}
		out[i] = r
	}
	return out, nil
}

// Filter keeps the records whose Date lies within w. Records without a Date are dropped.
func Filter(table model.Table, w model.Window) model.Table {
	out := make(model.Table, 0, len(table))
	for _, r := range table {
		if r.Date.Valid && w.Contains(r.Date.Time) {
			out = append(out, r)
		}
	}
	return out
}

// CountMissing counts missing values per field.
func CountMissing(table model.Table) model.MissingCounts {
	m := make(model.MissingCounts, len(model.Fields))
	for _, f := range model.Fields {
		m[f] = 0
	}
	for _, r := range table {
		if !r.Date.Valid {
			m[model.FieldDate]++
		}
		if !r.Open.Valid {
			m[model.FieldOpen]++
		}
		if !r.High.Valid {
			m[model.FieldHigh]++
		}
		if !r.Low.Valid {
			m[model.FieldLow]++
		}
		if !r.Close.Valid {
			m[model.FieldClose]++
		}
		if !r.Volume.Valid {
			m[model.FieldVolume]++
		}
		if r.Stock == "" {
			m[model.FieldStock]++
		}
	}
	return m
}

// DropMissing removes every record with at least one missing field.
func DropMissing(table model.Table) model.Table {
	out := make(model.Table, 0, len(table))
	for _, r := range table {
		if r.Complete() {
			out = append(out, r)
		}
	}
	return out
}

// Clean parses dates, restricts the table to w, counts missing values, and drops incomplete records.
// The counts describe the windowed table before the drop.
func Clean(table model.Table, w model.Window) (model.Table, model.MissingCounts, error) {
	parsed, err := ParseDates(table)
	if err != nil {
		return nil, nil, err
	}
	windowed := Filter(parsed, w)
	missing := CountMissing(windowed)
	return DropMissing(windowed), missing, nil
}
