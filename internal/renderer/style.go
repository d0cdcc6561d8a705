package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"StockTrends/internal/model"
)

// Style carries every presentation setting shared by the charts.
type Style struct {
	LineWidthPx    int
	LineHeightPx   int
	BarWidthIn     float64
	BarHeightIn    float64
	HeatmapWidthIn float64
	HeatmapHeight  float64
	BarColor       color.RGBA
	TitleFontSize  float64
	LabelFontSize  float64
	Period         string // appended to titles, e.g. "2019 - Present"
}

// DefaultStyle mirrors the configuration defaults.
func DefaultStyle() Style {
	return Style{
		LineWidthPx:    800,
		LineHeightPx:   400,
		BarWidthIn:     12,
		BarHeightIn:    6,
		HeatmapWidthIn: 10,
		HeatmapHeight:  8,
		BarColor:       color.RGBA{R: 0x3c, G: 0xb3, B: 0x71, A: 0xff}, // mediumseagreen
		TitleFontSize:  16,
		LabelFontSize:  12,
		Period:         "2019 - Present",
	}
}

// Period describes w for chart titles. An open end (today) reads "Present".
func Period(w model.Window, now time.Time) string {
	end := "Present"
	if model.Day(w.End).Before(model.Day(now)) {
		end = strconv.Itoa(w.End.Year())
	}
	return fmt.Sprintf("%d - %s", w.Start.Year(), end)
}

// ParseHexColor parses the forms a hexcolor config value may take:
// "#rgb", "#rgba", "#rrggbb" and "#rrggbbaa". Alpha defaults to opaque.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 || len(hex) == 4 {
		long := make([]byte, 0, 2*len(hex))
		for i := 0; i < len(hex); i++ {
			long = append(long, hex[i], hex[i])
		}
		hex = string(long)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func (s Style) title(base string) string {
	if s.Period == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, s.Period)
}
