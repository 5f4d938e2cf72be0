// Package series builds plot-ready series from canonical price rows.
package series

import (
	"sort"

	"github.com/sells-group/pricechart/internal/model"
)

// Options configures Build.
type Options struct {
	// Mode selects the year axis layout. Empty means ModeGap.
	Mode model.Mode
	// HoverProxy adds an invisible series with a numeric point at every axis
	// year so hit testing still lands on gap years.
	HoverProxy bool
	// RangeBars adds a series whose points carry the min/max pair.
	RangeBars bool
	// FillYears extends the axis to every whole year between the first and
	// last observation. Years without a row become gaps.
	FillYears bool
}

// DefaultOptions returns the options used by the chart page.
func DefaultOptions() Options {
	return Options{Mode: model.ModeGap, HoverProxy: true}
}

// Build converts rows into series aligned over a shared year axis. When rows
// repeat a year the last one wins; callers should flag that upstream.
func Build(rows []model.CanonicalRow, opts Options) model.SeriesSet {
	mode := opts.Mode
	if !mode.Valid() {
		mode = model.ModeGap
	}

	byYear := make(map[int]*model.CanonicalRow, len(rows))
	for i := range rows {
		byYear[rows[i].Year] = &rows[i]
	}

	full := Axis(rows)
	if opts.FillYears {
		full = fill(full)
	}

	missing := make([]int, 0)
	for _, year := range full {
		if isMissing(byYear[year]) {
			missing = append(missing, year)
		}
	}

	years := full
	if mode == model.ModeAvailable {
		years = make([]int, 0, len(full))
		for _, year := range full {
			if hasUsableData(byYear[year]) {
				years = append(years, year)
			}
		}
	}

	set := model.SeriesSet{
		Mode:         mode,
		Years:        years,
		MissingYears: missing,
	}

	if opts.HoverProxy {
		set.Series = append(set.Series, model.Series{
			Name:   model.SeriesHover,
			Kind:   model.SeriesProxy,
			Points: points(years, byYear, hoverValue),
		})
	}
	set.Series = append(set.Series,
		model.Series{
			Name:   model.SeriesMinPrice,
			Kind:   model.SeriesLine,
			Points: points(years, byYear, minValue),
		},
		model.Series{
			Name:   model.SeriesMaxPrice,
			Kind:   model.SeriesLine,
			Points: points(years, byYear, maxValue),
		},
	)
	if opts.RangeBars {
		set.Series = append(set.Series, model.Series{
			Name:   model.SeriesPriceRange,
			Kind:   model.SeriesRange,
			Points: rangePoints(years, byYear),
		})
	}

	return set
}

// Axis returns the sorted distinct years present in rows.
func Axis(rows []model.CanonicalRow) []int {
	seen := make(map[int]struct{}, len(rows))
	years := make([]int, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	sort.Ints(years)
	return years
}

// MissingYears returns the years of rows flagged for the missing-year
// marker: unavailable or lacking either price.
func MissingYears(rows []model.CanonicalRow) []int {
	return Build(rows, Options{}).MissingYears
}

// MaxFillSpan is the widest first-to-last span FillYears expands. Wider axes
// keep only their observed years.
const MaxFillSpan = 500

func fill(years []int) []int {
	if len(years) < 2 {
		return years
	}
	first, last := years[0], years[len(years)-1]
	if last-first > MaxFillSpan {
		return years
	}
	out := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		out = append(out, y)
	}
	return out
}

func isMissing(row *model.CanonicalRow) bool {
	return row == nil || row.IsUnavailable() || !row.HasBothPrices()
}

func hasUsableData(row *model.CanonicalRow) bool {
	return row != nil && !row.IsUnavailable() && (row.MinPrice != nil || row.MaxPrice != nil)
}

type valueFunc func(row *model.CanonicalRow) *float64

func minValue(row *model.CanonicalRow) *float64 {
	if row == nil || row.IsUnavailable() {
		return nil
	}
	return row.MinPrice
}

func maxValue(row *model.CanonicalRow) *float64 {
	if row == nil || row.IsUnavailable() {
		return nil
	}
	return row.MaxPrice
}

// hoverValue is always numeric: min, then max, then zero; zero for absent
// and unavailable years.
func hoverValue(row *model.CanonicalRow) *float64 {
	v := 0.0
	switch {
	case row == nil || row.IsUnavailable():
	case row.MinPrice != nil:
		v = *row.MinPrice
	case row.MaxPrice != nil:
		v = *row.MaxPrice
	}
	return &v
}

func points(years []int, byYear map[int]*model.CanonicalRow, value valueFunc) []model.PlotPoint {
	pts := make([]model.PlotPoint, 0, len(years))
	for _, year := range years {
		row := byYear[year]
		p := point(year, row)
		if v := value(row); v != nil {
			f := *v
			p.Value = &f
		}
		pts = append(pts, p)
	}
	return pts
}

func rangePoints(years []int, byYear map[int]*model.CanonicalRow) []model.PlotPoint {
	pts := make([]model.PlotPoint, 0, len(years))
	for _, year := range years {
		row := byYear[year]
		p := point(year, row)
		if !isMissing(row) {
			p.Low, p.High = p.MinPrice, p.MaxPrice
			p.Value = p.MaxPrice
		}
		pts = append(pts, p)
	}
	return pts
}

// point carries the row context regardless of gap status.
func point(year int, row *model.CanonicalRow) model.PlotPoint {
	p := model.PlotPoint{Year: year, SourceSummary: NoSources}
	if row == nil {
		return p
	}
	p.MinPrice = row.MinPrice
	p.MaxPrice = row.MaxPrice
	p.Available = row.Available
	p.Notes = row.Notes
	p.SourceSummary = Summarize(*row)
	return p
}
