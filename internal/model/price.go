package model

// RawRecord is one row of the source table keyed by column header. Values are
// untyped text exactly as found in the source.
type RawRecord map[string]string

// CanonicalRow is a single normalized year of price observations.
type CanonicalRow struct {
	Year      int      `json:"year"`
	Available *bool    `json:"available"`
	MinPrice  *float64 `json:"minPrice"`
	MaxPrice  *float64 `json:"maxPrice"`
	Notes     *string  `json:"notes"`

	SourceHistory              *string `json:"sourceHistory"`
	SourceCPIContext           *string `json:"sourceCpiContext"`
	SourceValueMenuAnchors     *string `json:"sourceValueMenuAnchors"`
	SourceRecentPricingAnchors *string `json:"sourceRecentPricingAnchors"`
}

// IsUnavailable reports whether the row is explicitly flagged as not available.
// An unknown availability is not unavailable.
func (r CanonicalRow) IsUnavailable() bool {
	return r.Available != nil && !*r.Available
}

// HasBothPrices reports whether both min and max prices are present.
func (r CanonicalRow) HasBothPrices() bool {
	return r.MinPrice != nil && r.MaxPrice != nil
}

// Inverted reports whether both prices are present and min exceeds max.
func (r CanonicalRow) Inverted() bool {
	return r.HasBothPrices() && *r.MinPrice > *r.MaxPrice
}

// Sources returns the four provenance fields in fixed order:
// history, CPI context, value-menu anchors, recent-pricing anchors.
func (r CanonicalRow) Sources() [4]*string {
	return [4]*string{
		r.SourceHistory,
		r.SourceCPIContext,
		r.SourceValueMenuAnchors,
		r.SourceRecentPricingAnchors,
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// String returns a pointer to s.
func String(s string) *string { return &s }
