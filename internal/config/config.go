package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StockTrends/internal/logger"
	"StockTrends/internal/model"
)

// DateLayout is the layout of every date in the configuration.
const DateLayout = "2006-01-02"

// EnvPrefix prefixes every environment override, e.g. STOCKTRENDS_DATA_DIR.
const EnvPrefix = "STOCKTRENDS"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Data struct {
		Dir        string   `yaml:"dir" default:"data/stocks" validate:"required"`
		Extensions []string `yaml:"extensions" default:"[\".csv\",\".xlsx\"]" validate:"min=1,dive,startswith=."`
	} `yaml:"data"`
	Analysis struct {
		StartDate  string `yaml:"start_date" default:"2019-01-01" validate:"required,datetime=2006-01-02"`
		EndDate    string `yaml:"end_date" validate:"omitempty,datetime=2006-01-02"` // empty means now
		Duplicates string `yaml:"duplicates" default:"error" validate:"oneof=error first last"`
	} `yaml:"analysis"`
	Output struct {
		Dir            string   `yaml:"dir" default:"out" validate:"required"`
		Charts         []string `yaml:"charts" default:"[\"line\",\"bar\",\"heatmap\"]" validate:"dive,oneof=line bar heatmap"`
		LineWidthPx    int      `yaml:"line_width_px" default:"800" validate:"gt=0"`
		LineHeightPx   int      `yaml:"line_height_px" default:"400" validate:"gt=0"`
		BarWidthIn     float64  `yaml:"bar_width_in" default:"12" validate:"gt=0"`
		BarHeightIn    float64  `yaml:"bar_height_in" default:"6" validate:"gt=0"`
		HeatmapWidthIn float64  `yaml:"heatmap_width_in" default:"10" validate:"gt=0"`
		HeatmapHeight  float64  `yaml:"heatmap_height_in" default:"8" validate:"gt=0"`
		BarColor       string   `yaml:"bar_color" default:"#3cb371" validate:"hexcolor"`
		TitleFontSize  float64  `yaml:"title_font_size" default:"16" validate:"gt=0"`
		LabelFontSize  float64  `yaml:"label_font_size" default:"12" validate:"gt=0"`
	} `yaml:"output"`
	Log      logger.Config `yaml:"log"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // empty disables the run journal
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron" default:"0 30 18 * * 1-5"`
	} `yaml:"schedule"`
}

// envOverrides lists the settings that may be overridden from the environment.
type envOverrides struct {
	DataDir    string `envconfig:"DATA_DIR"`
	OutputDir  string `envconfig:"OUTPUT_DIR"`
	StartDate  string `envconfig:"START_DATE"`
	EndDate    string `envconfig:"END_DATE"`
	Duplicates string `envconfig:"DUPLICATES"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	LogFormat  string `envconfig:"LOG_FORMAT"`
	SQLitePath string `envconfig:"SQLITE_PATH"`
	Cron       string `envconfig:"CRON"`
}

// Load reads config from a YAML file, then applies defaults and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applyEnv(env)

	return cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Data.Dir, env.DataDir)
	set(&c.Output.Dir, env.OutputDir)
	set(&c.Analysis.StartDate, env.StartDate)
	set(&c.Analysis.EndDate, env.EndDate)
	set(&c.Analysis.Duplicates, env.Duplicates)
	set(&c.Log.Level, env.LogLevel)
	set(&c.Log.Format, env.LogFormat)
	set(&c.Database.SQLitePath, env.SQLitePath)
	set(&c.Schedule.Cron, env.Cron)
}

// Validate checks every field against its constraints and that the window is not inverted.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Analysis.EndDate != "" {
		w, err := c.Window(time.Now())
		if err != nil {
			return err
		}
		if w.End.Before(w.Start) {
			return fmt.Errorf("%w: analysis.end_date %s is before analysis.start_date %s",
				ErrInvalid, c.Analysis.EndDate, c.Analysis.StartDate)
		}
	}
	return nil
}

// Window returns the analysis window. now is used when no end date is configured.
func (c *Config) Window(now time.Time) (model.Window, error) {
	start, err := time.Parse(DateLayout, c.Analysis.StartDate)
	if err != nil {
		return model.Window{}, fmt.Errorf("%w: analysis.start_date: %v", ErrInvalid, err)
	}
	end := now
	if c.Analysis.EndDate != "" {
		end, err = time.Parse(DateLayout, c.Analysis.EndDate)
		if err != nil {
			return model.Window{}, fmt.Errorf("%w: analysis.end_date: %v", ErrInvalid, err)
		}
	}
	return model.Window{Start: start, End: end}, nil
}

// ChartEnabled reports whether the named chart (line, bar, heatmap) is produced.
func (c *Config) ChartEnabled(name string) bool {
	for _, ch := range c.Output.Charts {
		if ch == name {
			return true
		}
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
