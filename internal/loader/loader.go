package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"StockTrends/internal/model"
)

// Loader discovers per-symbol files in a directory and concatenates them into one table.
type Loader struct {
	Readers map[string]Reader // keyed by lower-case extension, with the dot
	Log     zerolog.Logger
}

// NewLoader creates a Loader handling the given extensions.
// Extensions without a known reader are rejected.
func NewLoader(extensions []string, log zerolog.Logger) (*Loader, error) {
	known := map[string]Reader{
		".csv":  CSVReader{},
		".xlsx": XLSXReader{},
	}
	readers := make(map[string]Reader, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		r, ok := known[ext]
		if !ok {
			return nil, fmt.Errorf("no reader for extension %q", ext)
		}
		readers[ext] = r
	}
	return &Loader{Readers: readers, Log: log}, nil
}

// Discover lists the regular files of dir whose extension has a reader, sorted by name.
func (l *Loader) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, ok := l.Readers[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// SymbolFromPath derives the stock symbol from a file name: the base name up to its first dot.
func SymbolFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// LoadFile reads and parses a single file, tagging every record with the file's symbol.
func (l *Loader) LoadFile(path string) (model.Table, error) {
	r, ok := l.Readers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%s: no reader for extension", path)
	}
	sheet, err := r.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	recs, err := ParseRecords(sheet, SymbolFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Load reads every discovered file of dir into one table. Any file error aborts the load.
// It also returns the number of files read.
func (l *Loader) Load(ctx context.Context, dir string) (model.Table, int, error) {
	paths, err := l.Discover(dir)
	if err != nil {
		return nil, 0, err
	}
	if len(paths) == 0 {
		l.Log.Warn().Str("dir", dir).Msg("no data files found")
		return model.Table{}, 0, nil
	}

	table := model.Table{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		recs, err := l.LoadFile(p)
		if err != nil {
			return nil, 0, err
		}
		l.Log.Debug().Str("file", p).Int("records", len(recs)).Msg("file loaded")
		table = append(table, recs...)
	}

	l.Log.Info().
		Str("dir", dir).
		Int("files", len(paths)).
		Msgf("loaded %s records", humanize.Comma(int64(len(table))))
	return table, len(paths), nil
}
