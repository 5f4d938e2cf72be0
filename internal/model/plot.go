package model

// Mode selects how the Series Builder lays out the year axis.
type Mode string

const (
	// ModeGap keeps every observed year on the axis and breaks lines at
	// years without usable data.
	ModeGap Mode = "gap"
	// ModeAvailable restricts the axis to years with usable data.
	ModeAvailable Mode = "available"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeGap || m == ModeAvailable
}

// SeriesKind tells a renderer how to draw a series.
type SeriesKind string

const (
	SeriesLine  SeriesKind = "line"
	SeriesRange SeriesKind = "range"
	SeriesProxy SeriesKind = "proxy"
)

// Series names as shown in the chart legend.
const (
	SeriesMinPrice   = "Min price"
	SeriesMaxPrice   = "Max price"
	SeriesHover      = "Hover targets"
	SeriesPriceRange = "Price range"
)

// PlotPoint is one rendering unit of a series at a single year. A nil Value is
// a gap: no segment is drawn through it but its x position is kept.
type PlotPoint struct {
	Year          int      `json:"year" yaml:"year"`
	Value         *float64 `json:"value" yaml:"value"`
	Low           *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High          *float64 `json:"high,omitempty" yaml:"high,omitempty"`
	MinPrice      *float64 `json:"minPrice" yaml:"min_price"`
	MaxPrice      *float64 `json:"maxPrice" yaml:"max_price"`
	Available     *bool    `json:"available" yaml:"available"`
	Notes         *string  `json:"notes" yaml:"notes"`
	SourceSummary string   `json:"sourceSummary" yaml:"source_summary"`
}

// IsGap reports whether the point carries no value.
func (p PlotPoint) IsGap() bool {
	return p.Value == nil
}

// Series is a named sequence of points aligned to a SeriesSet's year axis.
type Series struct {
	Name   string      `json:"name" yaml:"name"`
	Kind   SeriesKind  `json:"kind" yaml:"kind"`
	Points []PlotPoint `json:"points" yaml:"points"`
}

// SeriesSet holds series that share the same year axis: index i of every
// series refers to Years[i].
type SeriesSet struct {
	Mode         Mode     `json:"mode" yaml:"mode"`
	Years        []int    `json:"years" yaml:"years"`
	Series       []Series `json:"series" yaml:"series"`
	MissingYears []int    `json:"missingYears" yaml:"missing_years"`
}

// Lookup returns the series with the given name.
func (s SeriesSet) Lookup(name string) (Series, bool) {
	for _, sr := range s.Series {
		if sr.Name == name {
			return sr, true
		}
	}
	return Series{}, false
}

// PointAt returns the point at axis index i of the hover proxy series, or of
// the first series when no proxy exists.
func (s SeriesSet) PointAt(i int) (PlotPoint, bool) {
	if i < 0 || i >= len(s.Years) || len(s.Series) == 0 {
		return PlotPoint{}, false
	}
	sr, ok := s.Lookup(SeriesHover)
	if !ok {
		sr = s.Series[0]
	}
	if i >= len(sr.Points) {
		return PlotPoint{}, false
	}
	return sr.Points[i], true
}
