// Package fetcher downloads price tables over HTTP or FTP and parses them
// from CSV, JSON, and XLSX into raw records.
package fetcher

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricechart/internal/model"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body. The caller
	// closes the body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

const bom = "\ufeff"

// Records zips a header row with data rows. Header names are trimmed, a
// leading byte-order mark is dropped, and rows whose cells are all blank are
// skipped. Short rows leave trailing columns unset.
func Records(header []string, rows [][]string) []model.RawRecord {
	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		cols[i] = strings.TrimSpace(h)
	}

	records := make([]model.RawRecord, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		rec := make(model.RawRecord, len(cols))
		for i, col := range cols {
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = strings.TrimSpace(row[i])
		}
		records = append(records, rec)
	}
	return records
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Format names a tabular encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks a format from a file name or URL path extension. Anything
// unrecognised is treated as CSV.
func FormatFor(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	}
	return FormatCSV
}

// Parse reads every record from r in the given format. sheet selects the
// worksheet for XLSX input; empty means the first.
func Parse(ctx context.Context, r io.Reader, format Format, sheet string) ([]model.RawRecord, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(ctx, r)
	case FormatXLSX:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "xlsx: read")
		}
		return ReadXLSXBytes(data, XLSXOptions{SheetName: sheet})
	default:
		return ReadCSV(ctx, r, CSVOptions{LazyQuotes: true})
	}
}
