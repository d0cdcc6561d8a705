package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StockTrends/internal/calculator"
	"StockTrends/internal/cleaner"
	"StockTrends/internal/loader"
	"StockTrends/internal/model"
	"StockTrends/internal/recorder"
	"StockTrends/internal/renderer"
)

// WindowFunc resolves the analysis window for a run started at now.
type WindowFunc func(now time.Time) (model.Window, error)

// Pipeline runs one report: load, clean, transform, render, record.
type Pipeline struct {
	DataDir    string
	Loader     *loader.Loader
	Window     WindowFunc
	Duplicates calculator.DuplicatePolicy
	Renderer   *renderer.Renderer
	Recorder   recorder.Recorder
	Log        zerolog.Logger
	Now        func() time.Time
}

// Result is everything one run produced.
type Result struct {
	Window    model.Window
	Period    string
	Files     int
	Raw       int
	Cleaned   model.Table
	Missing   model.MissingCounts
	Analysis  *calculator.Transformation
	Artifacts []string
}

// Summary returns the data for the textual run summary.
func (r *Result) Summary() renderer.SummaryData {
	return renderer.SummaryData{
		Period:       r.Period,
		Files:        r.Files,
		RawRecords:   r.Raw,
		CleanRecords: len(r.Cleaned),
		Missing:      r.Missing,
		Averages:     r.Analysis.Averages,
		Correlation:  r.Analysis.Correlation,
		Artifacts:    r.Artifacts,
	}
}

// Run executes the pipeline once. The run is journaled whether or not it succeeds.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	started := now()

	w, err := p.Window(started)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	run := recorder.NewRunRecord(p.DataDir, w, started)
	res, err := p.run(ctx, w, started)
	if res != nil {
		run.Files = res.Files
		run.RawRecords = res.Raw
		run.CleanRecords = len(res.Cleaned)
		run.Missing = res.Missing
		run.Artifacts = res.Artifacts
	}
	if err != nil {
		run.Err = err.Error()
	}
	run.FinishedAt = now()
	p.record(run)

	if err != nil {
		return nil, err
	}
	p.Log.Info().
		Str("run", run.ID.String()).
		Dur("elapsed", run.FinishedAt.Sub(started)).
		Int("charts", len(res.Artifacts)).
		Msg("report finished")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, w model.Window, started time.Time) (*Result, error) {
	res := &Result{Window: w, Period: renderer.Period(w, started)}

	t := time.Now()
	table, files, err := p.Loader.Load(ctx, p.DataDir)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	res.Files, res.Raw = files, len(table)
	p.stage("load", t)

	t = time.Now()
	cleaned, missing, err := cleaner.Clean(table, w)
	if err != nil {
		return res, fmt.Errorf("clean: %w", err)
	}
	res.Cleaned, res.Missing = cleaned, missing
	p.Log.Info().
		Int("kept", len(cleaned)).
		Int("dropped", res.Raw-len(cleaned)).
		Int("missing", missing.Total()).
		Msg("records cleaned")
	p.stage("clean", t)

	t = time.Now()
	analysis, err := calculator.Transform(cleaned, p.Duplicates)
	if err != nil {
		return res, fmt.Errorf("transform: %w", err)
	}
	res.Analysis = analysis
	if skipped := yearGroups(cleaned) - len(analysis.Annual); skipped > 0 {
		p.Log.Warn().Int("groups", skipped).Msg("annual return undefined for zero first close, skipped")
	}
	p.stage("transform", t)

	t = time.Now()
	p.Renderer.Style.Period = res.Period
	artifacts, err := p.Renderer.RenderAll(ctx, cleaned, analysis)
	res.Artifacts = artifacts
	if err != nil {
		return res, fmt.Errorf("render: %w", err)
	}
	p.stage("render", t)

	return res, nil
}

// yearGroups counts the distinct (year, stock) pairs of a cleaned table.
func yearGroups(table model.Table) int {
	type key struct {
		year  int
		stock string
	}
	seen := make(map[key]struct{})
	for _, r := range table {
		seen[key{r.Date.Time.Year(), r.Stock}] = struct{}{}
	}
	return len(seen)
}

func (p *Pipeline) stage(name string, t time.Time) {
	p.Log.Debug().Str("stage", name).Dur("elapsed", time.Since(t)).Msg("stage done")
}

func (p *Pipeline) record(run *recorder.RunRecord) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.RecordRun(run); err != nil {
		p.Log.Error().Err(err).Str("run", run.ID.String()).Msg("record run")
	}
}
