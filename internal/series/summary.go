package series

import (
	"strings"

	"github.com/sells-group/pricechart/internal/model"
)

const (
	// NoSources is the summary of a row without any provenance text.
	NoSources = "No sources listed."

	sourceSeparator = " | "
)

// Summarize joins the row's provenance fields in fixed order, skipping empty
// ones.
func Summarize(row model.CanonicalRow) string {
	parts := make([]string, 0, 4)
	for _, s := range row.Sources() {
		if s == nil || strings.TrimSpace(*s) == "" {
			continue
		}
		parts = append(parts, *s)
	}
	if len(parts) == 0 {
		return NoSources
	}
	return strings.Join(parts, sourceSeparator)
}
