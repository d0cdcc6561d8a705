package recorder

import (
	"time"

	"github.com/google/uuid"

	"StockTrends/internal/model"
)

// RunRecord holds the diagnostics of one report run.
type RunRecord struct {
	ID           uuid.UUID
	StartedAt    time.Time
	FinishedAt   time.Time
	DataDir      string
	Window       model.Window
	Files        int
	RawRecords   int
	CleanRecords int
	Missing      model.MissingCounts
	Artifacts    []string
	Err          string // empty on success
}

// NewRunRecord starts a record with a fresh id.
func NewRunRecord(dataDir string, w model.Window, startedAt time.Time) *RunRecord {
	return &RunRecord{
		ID:        uuid.New(),
		StartedAt: startedAt,
		DataDir:   dataDir,
		Window:    w,
	}
}

// Succeeded reports whether the run finished without error.
func (r *RunRecord) Succeeded() bool { return r.Err == "" }

// Recorder journals report runs.
type Recorder interface {
	RecordRun(run *RunRecord) error
	Recent(limit int) ([]RunRecord, error)
	Close() error
}
