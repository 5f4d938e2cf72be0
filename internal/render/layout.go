package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/sells-group/pricechart/internal/interact"
	"github.com/sells-group/pricechart/internal/model"
)

// Layout maps data space to pixel space for a rendered chart. Plot is the
// canvas box series are drawn into.
type Layout struct {
	Plot chart.Box `json:"plot"`
	XMin float64   `json:"xMin"`
	XMax float64   `json:"xMax"`
	YMin float64   `json:"yMin"`
	YMax float64   `json:"yMax"`
}

// Pixel returns the pixel position of a data point. It rounds the same way
// go-chart's continuous ranges do so markers line up with drawn points.
func (l Layout) Pixel(x, y float64) (float64, float64) {
	px := float64(l.Plot.Left) + translate(x, l.XMin, l.XMax, l.Plot.Width())
	py := float64(l.Plot.Bottom) - translate(y, l.YMin, l.YMax, l.Plot.Height())
	return px, py
}

func translate(v, lo, hi float64, domain int) float64 {
	delta := hi - lo
	if delta == 0 {
		return 0
	}
	return math.Ceil((v - lo) / delta * float64(domain))
}

// hitTargets returns, per axis index, the data-space point used for hit
// testing: the hover proxy when present, otherwise the first non-gap line
// point.
func hitTargets(set model.SeriesSet) []*[2]float64 {
	targets := make([]*[2]float64, len(set.Years))
	if proxy, ok := set.Lookup(model.SeriesHover); ok {
		for i, p := range proxy.Points {
			if i < len(targets) && p.Value != nil {
				targets[i] = &[2]float64{float64(p.Year), *p.Value}
			}
		}
		return targets
	}
	for _, sr := range set.Series {
		if sr.Kind != model.SeriesLine {
			continue
		}
		for i, p := range sr.Points {
			if i < len(targets) && targets[i] == nil && p.Value != nil {
				targets[i] = &[2]float64{float64(p.Year), *p.Value}
			}
		}
	}
	return targets
}

// nearest returns the axis index whose hit target is closest to (x, y) in
// pixels, provided it lies within radius.
func nearest(l Layout, set model.SeriesSet, radius, x, y float64) interact.Hit {
	best := interact.Miss
	bestD := math.MaxFloat64
	for i, t := range hitTargets(set) {
		if t == nil {
			continue
		}
		px, py := l.Pixel(t[0], t[1])
		d := math.Hypot(px-x, py-y)
		if d <= radius && d < bestD {
			best, bestD = interact.At(i), d
		}
	}
	return best
}
