package cleaner

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTrends/internal/model"
)

func price(v float64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromFloat(v)) }

func rec(stock, date string, px float64) model.PriceRecord {
	return model.PriceRecord{
		RawDate: date,
		Open:    price(px),
		High:    price(px),
		Low:     price(px),
		Close:   price(px),
		Volume:  null.IntFrom(100),
		Stock:   stock,
	}
}

var window = model.Window{
	Start: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 6, 30, 15, 30, 0, 0, time.UTC),
}

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2020-07-01", "2020-7-1", "2020-07-01 09:30:00", "2020-07-01T16:00:00Z", "07/01/2020", "7/1/2020", "2020/07/01"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseDate("yesterday")
	assert.ErrorIs(t, err, ErrDate)
}

func TestParseDates_DoesNotMutateInput(t *testing.T) {
	in := model.Table{rec("AAA", "2020-01-02", 1)}
	out, err := ParseDates(in)
	require.NoError(t, err)
	assert.False(t, in[0].Date.Valid)
	assert.True(t, out[0].Date.Valid)
}

func TestParseDates_BadDateIsFatal(t *testing.T) {
	_, err := ParseDates(model.Table{rec("AAA", "2020-13-45", 1)})
	require.ErrorIs(t, err, ErrDate)
}

func TestClean_WindowBounds(t *testing.T) {
	table := model.Table{
		rec("AAA", "2018-12-31", 1),
		rec("AAA", "2019-01-01", 2), // start is inclusive
		rec("AAA", "2024-06-30", 3), // end day is inclusive
		rec("AAA", "2024-07-01", 4),
		rec("AAA", "", 5), // no date: outside any window
	}
	cleaned, missing, err := Clean(table, window)
	require.NoError(t, err)
	require.Len(t, cleaned, 2)
	assert.Equal(t, 2.0, cleaned[0].CloseFloat())
	assert.Equal(t, 3.0, cleaned[1].CloseFloat())
	assert.Zero(t, missing.Total())

	for _, r := range cleaned {
		assert.True(t, window.Contains(r.Date.Time))
		assert.True(t, r.Complete())
	}
}

func TestClean_ReportsAndDropsMissing(t *testing.T) {
	noClose := rec("AAA", "2020-01-03", 0)
	noClose.Close = decimal.NullDecimal{}
	noVolume := rec("BBB", "2020-01-03", 7)
	noVolume.Volume = null.Int{}
	noBoth := rec("BBB", "2020-01-06", 7)
	noBoth.Close = decimal.NullDecimal{}
	noBoth.Open = decimal.NullDecimal{}

	table := model.Table{rec("AAA", "2020-01-02", 1), noClose, noVolume, noBoth}
	cleaned, missing, err := Clean(table, window)
	require.NoError(t, err)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "AAA", cleaned[0].Stock)
	assert.Equal(t, 2, missing[model.FieldClose])
	assert.Equal(t, 1, missing[model.FieldOpen])
	assert.Equal(t, 1, missing[model.FieldVolume])
	assert.Equal(t, 0, missing[model.FieldDate])
	assert.Equal(t, 4, missing.Total())
}

func TestCountMissing_AllFieldsPresent(t *testing.T) {
	m := CountMissing(nil)
	assert.Len(t, m, len(model.Fields))
	assert.Zero(t, m.Total())
}
