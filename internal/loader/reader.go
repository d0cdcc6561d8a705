package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a normalized header name (lower case, trimmed) to its cell text.
type Row map[string]string

// Sheet is one tabular file: its normalized header and its data rows.
type Sheet struct {
	Header []string
	Rows   []Row
}

// Reader parses a tabular file. A file without a header row is an ErrParse.
type Reader interface {
	Read(path string) (*Sheet, error)
	Name() string
}

// CSVReader reads comma separated files with a header row.
type CSVReader struct{}

func (CSVReader) Name() string { return "csv" }

func (CSVReader) Read(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	sheet := &Sheet{Header: normalizeAll(header)}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
		}
		sheet.Rows = append(sheet.Rows, toRow(header, rec))
	}
	return sheet, nil
}

// XLSXReader reads the price sheet of an Excel workbook.
// Cells are read as stored, so date-typed cells arrive as serial numbers and are
// rewritten as YYYY-MM-DD.
type XLSXReader struct{}

func (XLSXReader) Name() string { return "xlsx" }

func (XLSXReader) Read(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	raw := excelize.Options{RawCellValue: true}

	// Prefer the first sheet that looks like a price table.
	var rows [][]string
	for _, name := range sheets {
		r, err := f.GetRows(name, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrParse, name, err)
		}
		if len(r) > 0 && hasColumns(r[0], "date", "close") {
			rows = r
			break
		}
	}
	if rows == nil {
		if rows, err = f.GetRows(sheets[0], raw); err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrParse, sheets[0], err)
		}
	}
	if len(rows) == 0 || blank(rows[0]) {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}

	sheet := &Sheet{Header: normalizeAll(rows[0])}
	dateCol := -1
	for i, h := range sheet.Header {
		if h == "date" {
			dateCol = i
			break
		}
	}
	for _, rec := range rows[1:] {
		if blank(rec) {
			continue
		}
		if dateCol >= 0 && dateCol < len(rec) {
			rec[dateCol] = serialDate(rec[dateCol])
		}
		sheet.Rows = append(sheet.Rows, toRow(rows[0], rec))
	}
	return sheet, nil
}

// maxSerial is 9999-12-31, the last day Excel can represent.
const maxSerial = 2958465

// serialDate rewrites an Excel date serial as YYYY-MM-DD. Other text is returned unchanged.
func serialDate(cell string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || serial <= 0 || serial > maxSerial {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t.Format("2006-01-02")
}

func toRow(header, rec []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		key := normalize(h)
		if key == "" {
			continue
		}
		if i < len(rec) {
			row[key] = strings.TrimSpace(rec[i])
		} else {
			row[key] = ""
		}
	}
	return row
}

func normalize(h string) string { return strings.ToLower(strings.TrimSpace(h)) }

func normalizeAll(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = normalize(h)
	}
	return out
}

func hasColumns(header []string, names ...string) bool {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[normalize(h)] = true
	}
	for _, n := range names {
		if !have[n] {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
