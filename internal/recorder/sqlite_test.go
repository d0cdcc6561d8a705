package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTrends/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	r := openTemp(t)

	w := model.Window{
		Start: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	started := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	run := NewRunRecord("data/stocks", w, started)
	run.FinishedAt = started.Add(2 * time.Second)
	run.Files = 2
	run.RawRecords = 10
	run.CleanRecords = 9
	run.Missing = model.MissingCounts{model.FieldClose: 1, model.FieldOpen: 0}
	run.Artifacts = []string{"out/closing_prices.html"}

	require.NoError(t, r.RecordRun(run))

	runs, err := r.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, got.StartedAt.Equal(run.StartedAt))
	assert.True(t, got.FinishedAt.Equal(run.FinishedAt))
	assert.Equal(t, "data/stocks", got.DataDir)
	assert.True(t, got.Window.Start.Equal(w.Start))
	assert.True(t, got.Window.End.Equal(w.End))
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, 10, got.RawRecords)
	assert.Equal(t, 9, got.CleanRecords)
	assert.Equal(t, 1, got.Missing[model.FieldClose])
	assert.Equal(t, []string{"out/closing_prices.html"}, got.Artifacts)
	assert.True(t, got.Succeeded())
}

func TestSQLiteRecorderRecentOrder(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := NewRunRecord("data", model.Window{Start: base, End: base}, base.Add(time.Duration(i)*time.Hour))
		run.FinishedAt = run.StartedAt
		if i == 2 {
			run.Err = "load: no such directory"
		}
		require.NoError(t, r.RecordRun(run))
	}

	runs, err := r.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[0].Succeeded())
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}

func TestSQLiteRecorderReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, r.RecordRun(NewRunRecord("data", model.Window{Start: now, End: now}, now)))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()
	runs, err := r.Recent(5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunRecord{}))
	runs, err := r.Recent(1)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, r.Close())
}
