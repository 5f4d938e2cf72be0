package pipeline

import (
	"github.com/sells-group/pricechart/internal/config"
	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/render"
	"github.com/sells-group/pricechart/internal/series"
)

// SeriesOptions maps chart settings onto series builder options.
func SeriesOptions(c config.ChartConfig) series.Options {
	return series.Options{
		Mode:       model.Mode(c.Mode),
		HoverProxy: c.HoverProxy,
		RangeBars:  c.RangeBars,
		FillYears:  c.FillYears,
	}
}

// RenderOptions maps chart settings onto renderer options.
func RenderOptions(c config.ChartConfig) render.Options {
	opts := render.DefaultOptions()
	opts.Width = c.Width
	opts.Height = c.Height
	opts.XTickStep = c.XTickStep
	opts.YMin = c.YMin
	opts.YMax = c.YMax
	opts.MarkerOffset = c.MarkerOffset
	opts.HitRadius = c.HitRadius
	return opts
}
