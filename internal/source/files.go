package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricechart/internal/fetcher"
	"github.com/sells-group/pricechart/internal/model"
)

// Files reads the first readable file among an ordered list of candidates.
type Files struct {
	Candidates []string
	// Default is the path that needs no announcement when it is the one
	// loaded.
	Default string
	Sheet   string
}

// NewFiles builds the candidate list: the configured path, the default path,
// then data/prices.csv under the working directory. Empty and repeated paths
// are dropped.
func NewFiles(path, defaultPath, sheet string) *Files {
	cands := []string{path, defaultPath}
	if wd, err := os.Getwd(); err == nil {
		cands = append(cands, filepath.Join(wd, "data", "prices.csv"))
	}

	seen := make(map[string]bool, len(cands))
	var out []string
	for _, c := range cands {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := c
		if abs, err := filepath.Abs(c); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return &Files{Candidates: out, Default: defaultPath, Sheet: sheet}
}

// Read parses the first candidate that opens and parses cleanly. Each failed
// candidate is logged and skipped.
func (f *Files) Read(ctx context.Context) ([]model.RawRecord, error) {
	log := zap.L().With(zap.String("component", "source"))

	for _, path := range f.Candidates {
		recs, err := readFile(ctx, path, f.Sheet)
		if err != nil {
			log.Warn("unable to read csv", zap.String("path", path), zap.Error(err))
			continue
		}
		if path != f.Default {
			log.Info("loaded csv data", zap.String("path", path), zap.Int("records", len(recs)))
		}
		return recs, nil
	}

	return nil, eris.Wrapf(ErrUnavailable, "source: no readable file among %s", strings.Join(f.Candidates, ", "))
}

func readFile(ctx context.Context, path, sheet string) ([]model.RawRecord, error) {
	format := fetcher.FormatFor(path)
	if format == fetcher.FormatXLSX {
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet})
	}

	file, err := os.Open(path) //nolint:gosec // operator-configured path
	if err != nil {
		return nil, eris.Wrap(err, "source: open")
	}
	defer file.Close() //nolint:errcheck

	return fetcher.Parse(ctx, file, format, sheet)
}
