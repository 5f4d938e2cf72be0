// Package normalize turns loosely typed table rows into canonical price rows.
package normalize

import (
	"strings"

	"github.com/sells-group/pricechart/internal/model"
)

// Row is a normalized record before the year requirement is enforced. HasYear
// is false when the year column is missing or unparseable; such rows are
// dropped at the pipeline boundary.
type Row struct {
	model.CanonicalRow
	HasYear bool
}

// Resolve returns the first non-empty value among the field's aliases.
func Resolve(rec model.RawRecord, field Field) (string, bool) {
	for _, alias := range Aliases[field] {
		if v := strings.TrimSpace(rec[alias]); v != "" {
			return v, true
		}
	}
	return "", false
}

// Record normalizes a single raw record. It never fails: malformed cells
// degrade to nil or unknown.
func Record(rec model.RawRecord) Row {
	var row Row

	if v, ok := Resolve(rec, FieldYear); ok {
		row.Year, row.HasYear = ParseYear(v)
	}
	if v, ok := Resolve(rec, FieldAvailable); ok {
		row.Available = ParseBool(v)
	}
	if v, ok := Resolve(rec, FieldMinPrice); ok {
		row.MinPrice = ParseDecimal(v)
	}
	if v, ok := Resolve(rec, FieldMaxPrice); ok {
		row.MaxPrice = ParseDecimal(v)
	}

	row.Notes = text(rec, FieldNotes)
	row.SourceHistory = text(rec, FieldSourceHistory)
	row.SourceCPIContext = text(rec, FieldSourceCPIContext)
	row.SourceValueMenuAnchors = text(rec, FieldSourceValueMenuAnchors)
	row.SourceRecentPricingAnchors = text(rec, FieldSourceRecentPricingAnchors)

	return row
}

// Normalize normalizes every record, preserving input order.
func Normalize(records []model.RawRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Record(rec))
	}
	return rows
}

func text(rec model.RawRecord, field Field) *string {
	v, ok := Resolve(rec, field)
	if !ok {
		return nil
	}
	return &v
}
