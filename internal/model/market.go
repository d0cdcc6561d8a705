package model

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// PriceRecord is one trading day of one symbol.
type PriceRecord struct {
	RawDate string    // date text as read from the file
	Date    null.Time // set by cleaner.ParseDates
	Open    decimal.NullDecimal
	High    decimal.NullDecimal
	Low     decimal.NullDecimal
	Close   decimal.NullDecimal
	Volume  null.Int
	Stock   string
}

// Complete reports whether no field of the record is missing.
func (r PriceRecord) Complete() bool {
	return r.Date.Valid && r.Open.Valid && r.High.Valid && r.Low.Valid &&
		r.Close.Valid && r.Volume.Valid && r.Stock != ""
}

// CloseFloat returns the closing price as a float64. It is zero when Close is missing.
func (r PriceRecord) CloseFloat() float64 {
	if !r.Close.Valid {
		return 0
	}
	f, _ := r.Close.Decimal.Float64()
	return f
}

// Table is the unified record set of all symbols.
type Table []PriceRecord

// Symbols returns the distinct symbols of the table in first-seen order.
func (t Table) Symbols() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t {
		if !seen[r.Stock] {
			seen[r.Stock] = true
			out = append(out, r.Stock)
		}
	}
	return out
}

// Field names a column of a PriceRecord.
type Field string

const (
	FieldDate   Field = "Date"
	FieldOpen   Field = "Open"
	FieldHigh   Field = "High"
	FieldLow    Field = "Low"
	FieldClose  Field = "Close"
	FieldVolume Field = "Volume"
	FieldStock  Field = "Stock"
)

// Fields lists every column in display order.
var Fields = []Field{FieldDate, FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume, FieldStock}

// MissingCounts holds the number of missing values per field.
type MissingCounts map[Field]int

// Total returns the sum of all per-field counts.
func (m MissingCounts) Total() int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// Window is an inclusive date range at day granularity.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on or between Start and End.
func (w Window) Contains(t time.Time) bool {
	day := Day(t)
	return !day.Before(Day(w.Start)) && !day.After(Day(w.End))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
