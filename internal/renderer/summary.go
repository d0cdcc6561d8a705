package renderer

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	md "github.com/nao1215/markdown"

	"StockTrends/internal/model"
)

// SummaryData is everything the textual summary reports.
type SummaryData struct {
	Period       string
	Files        int
	RawRecords   int
	CleanRecords int
	Missing      model.MissingCounts
	Averages     []model.AverageReturn
	Correlation  *model.CorrelationMatrix
	Artifacts    []string
}

// WriteMissing prints the per-field missing-value counts, one field per line.
func WriteMissing(w io.Writer, missing model.MissingCounts) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, f := range model.Fields {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t\n", f, missing[f]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// SummaryMarkdown renders the run summary as markdown.
func SummaryMarkdown(d SummaryData) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Stock Analysis (%s)", d.Period))
	doc.PlainText(fmt.Sprintf("%s files, %s records read, %s records kept after cleaning.",
		humanize.Comma(int64(d.Files)), humanize.Comma(int64(d.RawRecords)), humanize.Comma(int64(d.CleanRecords))))

	doc.H2("Missing Values")
	missing := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Field", "Missing"},
		Rows:      [][]string{},
	}
	for _, f := range model.Fields {
		missing.Rows = append(missing.Rows, []string{string(f), humanize.Comma(int64(d.Missing[f]))})
	}
	doc.Table(missing)

	doc.H2("Average Annual Returns")
	if len(d.Averages) == 0 {
		doc.PlainText("No annual returns could be computed.")
	} else {
		avg := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Stock", "Return (%)", "Years"},
			Rows:      [][]string{},
		}
		for _, a := range d.Averages {
			avg.Rows = append(avg.Rows, []string{a.Stock, fmt.Sprintf("%.2f", a.ReturnPct), fmt.Sprint(a.Years)})
		}
		doc.Table(avg)
	}

	doc.H2("Correlation of Daily Returns")
	if d.Correlation == nil || len(d.Correlation.Stocks) == 0 {
		doc.PlainText("No stocks to correlate.")
	} else {
		c := d.Correlation
		corr := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft},
			Header:    append([]string{""}, c.Stocks...),
			Rows:      [][]string{},
		}
		for range c.Stocks {
			corr.Alignment = append(corr.Alignment, md.AlignRight)
		}
		for i, s := range c.Stocks {
			row := []string{md.Bold(s)}
			for _, v := range c.Values[i] {
				row = append(row, formatCorr(v))
			}
			corr.Rows = append(corr.Rows, row)
		}
		doc.Table(corr)
	}

	if len(d.Artifacts) > 0 {
		doc.H2("Charts")
		doc.BulletList(d.Artifacts...)
	}

	return doc.String()
}

// Terminal renders markdown for display on a terminal.
func Terminal(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return out, nil
}

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
