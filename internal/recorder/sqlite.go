package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockTrends/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder journals runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets a dashboard read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			started_at    INTEGER NOT NULL,
			finished_at   INTEGER NOT NULL,
			data_dir      TEXT,
			window_start  TEXT,
			window_end    TEXT,
			files         INTEGER,
			raw_records   INTEGER,
			clean_records INTEGER,
			missing_total INTEGER,
			missing       TEXT,
			artifacts     TEXT,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// RecordRun inserts one run row.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	missing, err := json.Marshal(run.Missing)
	if err != nil {
		return fmt.Errorf("encode missing counts: %w", err)
	}
	artifacts, err := json.Marshal(run.Artifacts)
	if err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO runs
		(id, started_at, finished_at, data_dir, window_start, window_end,
		 files, raw_records, clean_records, missing_total, missing, artifacts, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID.String(), run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.DataDir, run.Window.Start.Format(dateLayout), run.Window.End.Format(dateLayout),
		run.Files, run.RawRecords, run.CleanRecords, run.Missing.Total(),
		string(missing), string(artifacts), run.Err,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, started_at, finished_at, data_dir, window_start, window_end,
		files, raw_records, clean_records, missing, artifacts, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			run                RunRecord
			id, start, end     string
			started, finished  int64
			missing, artifacts string
		)
		if err := rows.Scan(&id, &started, &finished, &run.DataDir, &start, &end,
			&run.Files, &run.RawRecords, &run.CleanRecords, &missing, &artifacts, &run.Err); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(finished).UTC()
		run.Window = model.Window{Start: parseDay(start), End: parseDay(end)}
		if err := json.Unmarshal([]byte(missing), &run.Missing); err != nil {
			return nil, fmt.Errorf("decode missing counts: %w", err)
		}
		if err := json.Unmarshal([]byte(artifacts), &run.Artifacts); err != nil {
			return nil, fmt.Errorf("decode artifacts: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func parseDay(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}
