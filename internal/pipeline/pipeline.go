// Package pipeline loads the price table and turns it into chart series.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/normalize"
	"github.com/sells-group/pricechart/internal/series"
	"github.com/sells-group/pricechart/internal/source"
)

// Report lists data defects found while loading. None of them reject the
// dataset.
type Report struct {
	// Dropped counts records without a usable year.
	Dropped int `json:"dropped" yaml:"dropped"`
	// Duplicates are years that occur on more than one row.
	Duplicates []int `json:"duplicateYears" yaml:"duplicate_years"`
	// Inverted are years whose min price exceeds the max price.
	Inverted []int `json:"invertedYears" yaml:"inverted_years"`
}

// Clean reports whether no defect was found.
func (r Report) Clean() bool {
	return r.Dropped == 0 && len(r.Duplicates) == 0 && len(r.Inverted) == 0
}

// Dataset is a normalized, year-ordered price table.
type Dataset struct {
	Rows     []model.CanonicalRow
	Report   Report
	LoadedAt time.Time
}

// Load reads src, normalizes every record, drops records without a year, and
// orders the rest by year. Rows sharing a year keep their input order.
func Load(ctx context.Context, src source.Source) (*Dataset, error) {
	start := time.Now()
	log := zap.L().With(zap.String("component", "pipeline"))

	records, err := src.Read(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read source")
	}

	normalized := normalize.Normalize(records)
	ds := &Dataset{
		Rows:     make([]model.CanonicalRow, 0, len(normalized)),
		LoadedAt: time.Now().UTC(),
	}
	for _, row := range normalized {
		if !row.HasYear {
			ds.Report.Dropped++
			continue
		}
		ds.Rows = append(ds.Rows, row.CanonicalRow)
	}

	sort.SliceStable(ds.Rows, func(i, j int) bool {
		return ds.Rows[i].Year < ds.Rows[j].Year
	})

	ds.Report.Duplicates = duplicates(ds.Rows)
	ds.Report.Inverted = inverted(ds.Rows)

	if ds.Report.Dropped > 0 {
		log.Debug("pipeline: dropped records without year", zap.Int("count", ds.Report.Dropped))
	}
	if len(ds.Report.Duplicates) > 0 {
		log.Warn("pipeline: duplicate years", zap.Ints("years", ds.Report.Duplicates))
	}
	if len(ds.Report.Inverted) > 0 {
		log.Warn("pipeline: min price above max price", zap.Ints("years", ds.Report.Inverted))
	}

	log.Debug("pipeline: loaded",
		zap.Int("records", len(records)),
		zap.Int("rows", len(ds.Rows)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return ds, nil
}

// Series builds the chart series for the dataset.
func (d *Dataset) Series(opts series.Options) model.SeriesSet {
	return series.Build(d.Rows, opts)
}

// Run loads src and builds its series in one step.
func Run(ctx context.Context, src source.Source, opts series.Options) (*Dataset, model.SeriesSet, error) {
	ds, err := Load(ctx, src)
	if err != nil {
		return nil, model.SeriesSet{}, err
	}
	return ds, ds.Series(opts), nil
}

func year(r model.CanonicalRow, _ int) int { return r.Year }

func duplicates(rows []model.CanonicalRow) []int {
	return append(make([]int, 0), lo.FindDuplicates(lo.Map(rows, year))...)
}

func inverted(rows []model.CanonicalRow) []int {
	return lo.FilterMap(rows, func(r model.CanonicalRow, _ int) (int, bool) {
		return r.Year, r.Inverted()
	})
}
