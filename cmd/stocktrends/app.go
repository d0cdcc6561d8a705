package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"StockTrends/internal/calculator"
	"StockTrends/internal/config"
	"StockTrends/internal/loader"
	"StockTrends/internal/logger"
	"StockTrends/internal/recorder"
	"StockTrends/internal/renderer"
	"StockTrends/internal/report"
)

var configPath = flag.String("config", defaultConfigPath(), "path to the YAML config file (env CONFIG_PATH)")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// reportFlags override the matching config settings when set.
type reportFlags struct {
	data       string
	out        string
	start      string
	end        string
	duplicates string
	plain      bool
}

func (r *reportFlags) register(f *flag.FlagSet) {
	f.StringVar(&r.data, "data", "", "directory of per-stock .csv/.xlsx files")
	f.StringVar(&r.out, "out", "", "directory the charts are written to")
	f.StringVar(&r.start, "start", "", "first day of the analysis window (YYYY-MM-DD)")
	f.StringVar(&r.end, "end", "", "last day of the analysis window (YYYY-MM-DD), default today")
	f.StringVar(&r.duplicates, "duplicates", "", "duplicate (date, stock) handling: error, first or last")
	f.BoolVar(&r.plain, "plain", false, "print the summary as plain markdown")
}

func (r *reportFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Data.Dir, r.data)
	set(&cfg.Output.Dir, r.out)
	set(&cfg.Analysis.StartDate, r.start)
	set(&cfg.Analysis.EndDate, r.end)
	set(&cfg.Analysis.Duplicates, r.duplicates)
}

// app holds what every command builds from the configuration.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	logOut io.Closer
	rec    recorder.Recorder
}

func newApp(flags *reportFlags) (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags != nil {
		flags.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, logOut, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, logOut: logOut, rec: recorder.NewNoopRecorder()}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.rec = sr
		}
	}
	return a, nil
}

func (a *app) close() {
	if err := a.rec.Close(); err != nil {
		a.log.Error().Err(err).Msg("close recorder")
	}
	if err := a.logOut.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log output: %v\n", err)
	}
}

func (a *app) pipeline() (*report.Pipeline, error) {
	l, err := loader.NewLoader(a.cfg.Data.Extensions, a.log)
	if err != nil {
		return nil, err
	}
	policy, err := calculator.ParseDuplicatePolicy(a.cfg.Analysis.Duplicates)
	if err != nil {
		return nil, err
	}
	style, err := a.style()
	if err != nil {
		return nil, err
	}

	r := renderer.NewRenderer(a.cfg.Output.Dir, style, a.log)
	r.Charts = r.Charts[:0]
	for _, c := range []string{renderer.ChartLine, renderer.ChartBar, renderer.ChartHeatmap} {
		if a.cfg.ChartEnabled(c) {
			r.Charts = append(r.Charts, c)
		}
	}

	return &report.Pipeline{
		DataDir:    a.cfg.Data.Dir,
		Loader:     l,
		Window:     a.cfg.Window,
		Duplicates: policy,
		Renderer:   r,
		Recorder:   a.rec,
		Log:        a.log,
	}, nil
}

func (a *app) style() (renderer.Style, error) {
	o := a.cfg.Output
	barColor, err := renderer.ParseHexColor(o.BarColor)
	if err != nil {
		return renderer.Style{}, err
	}
	return renderer.Style{
		LineWidthPx:    o.LineWidthPx,
		LineHeightPx:   o.LineHeightPx,
		BarWidthIn:     o.BarWidthIn,
		BarHeightIn:    o.BarHeightIn,
		HeatmapWidthIn: o.HeatmapWidthIn,
		HeatmapHeight:  o.HeatmapHeight,
		BarColor:       barColor,
		TitleFontSize:  o.TitleFontSize,
		LabelFontSize:  o.LabelFontSize,
	}, nil
}

// printResult writes the missing-value diagnostic followed by the run summary.
func printResult(w io.Writer, res *report.Result, plain bool) error {
	if err := renderer.WriteMissing(w, res.Missing); err != nil {
		return err
	}
	fmt.Fprintln(w)

	summary := renderer.SummaryMarkdown(res.Summary())
	if !plain && isTerminal(w) {
		out, err := renderer.Terminal(summary, 100)
		if err != nil {
			return err
		}
		summary = out
	}
	_, err := io.WriteString(w, summary)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
