package series

import (
	"html"
	"strconv"
	"strings"

	"github.com/sells-group/pricechart/internal/model"
)

// TooltipContent is the rendered content for a point. Notes and Sources are
// HTML fragments; the other fields are plain text.
type TooltipContent struct {
	Title        string `json:"title"`
	Range        string `json:"range"`
	Availability string `json:"availability"`
	Notes        string `json:"notes"`
	Sources      string `json:"sources"`
}

// Tooltip builds the tooltip content for p.
func Tooltip(p model.PlotPoint) TooltipContent {
	notes := "None"
	if p.Notes != nil && *p.Notes != "" {
		notes = Linkify(*p.Notes)
	}
	sources := NoSources
	if p.SourceSummary != "" {
		sources = Linkify(p.SourceSummary)
	}

	var title string
	if p.Year != 0 {
		title = strconv.Itoa(p.Year)
	}

	return TooltipContent{
		Title:        title,
		Range:        "Range: " + FormatPrice(p.MinPrice) + " – " + FormatPrice(p.MaxPrice),
		Availability: AvailabilityLabel(p.Available),
		Notes:        notes,
		Sources:      sources,
	}
}

// TooltipLines returns the tooltip for p as plain text lines, used by
// renderers that cannot draw markup.
func TooltipLines(p model.PlotPoint) []string {
	c := Tooltip(p)
	notes := "None"
	if p.Notes != nil && *p.Notes != "" {
		notes = *p.Notes
	}
	sources := p.SourceSummary
	if sources == "" {
		sources = NoSources
	}
	return []string{
		c.Title,
		c.Range,
		"Availability: " + c.Availability,
		"Notes: " + notes,
		"Sources: " + sources,
	}
}

// HTML renders the tooltip body markup.
func (c TooltipContent) HTML() string {
	var b strings.Builder
	b.WriteString(`<div class="tooltip-title">` + html.EscapeString(c.Title) + `</div>`)
	b.WriteString(`<div class="tooltip-range">` + html.EscapeString(c.Range) + `</div>`)
	b.WriteString(`<div class="tooltip-section"><strong>Availability:</strong> ` + html.EscapeString(c.Availability) + `</div>`)
	b.WriteString(`<div class="tooltip-section"><strong>Notes:</strong> ` + c.Notes + `</div>`)
	b.WriteString(`<div class="tooltip-section"><strong>Sources:</strong> ` + c.Sources + `</div>`)
	return b.String()
}
