// Package render draws price series with go-chart and answers hit tests
// against the drawn geometry.
package render

import (
	"io"
	"math"

	"github.com/rotisserie/eris"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sells-group/pricechart/internal/interact"
	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/series"
)

// ErrNoData is returned when the set has no years to draw.
var ErrNoData = eris.New("render: no data to draw")

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

var (
	colorGreen       = drawing.ColorFromHex("27742d")
	colorRed         = drawing.ColorFromHex("db1020")
	colorGold        = drawing.ColorFromHex("ffd700")
	colorCream       = drawing.ColorFromHex("f9f5f5")
	colorBlack       = drawing.ColorFromHex("111111")
	colorGrid        = colorBlack.WithAlpha(20)
	colorInvisible   = drawing.Color{R: 255, G: 255, B: 255, A: 0}
	colorRangeFill   = colorGold.WithAlpha(110)
	colorTooltipFill = drawing.ColorWhite.WithAlpha(240)
)

// Options controls chart geometry and axis conventions.
type Options struct {
	Width        int
	Height       int
	XTickStep    int
	YMin         float64
	YMax         float64
	MarkerOffset float64
	MarkerGlyph  string
	HitRadius    float64
}

// DefaultOptions returns the chart page defaults: y fixed to [0, 5] dollars,
// a tick every five years, markers at $0.25.
func DefaultOptions() Options {
	return Options{
		Width:        960,
		Height:       480,
		XTickStep:    5,
		YMin:         0,
		YMax:         5,
		MarkerOffset: 0.25,
		MarkerGlyph:  "×",
		HitRadius:    12,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.XTickStep <= 0 {
		o.XTickStep = d.XTickStep
	}
	if o.YMax <= o.YMin {
		o.YMin, o.YMax = d.YMin, d.YMax
	}
	if o.MarkerGlyph == "" {
		o.MarkerGlyph = d.MarkerGlyph
	}
	if o.HitRadius <= 0 {
		o.HitRadius = d.HitRadius
	}
	return o
}

// Chart is a go-chart backed renderer for one SeriesSet. It implements
// interact.Hooks and interact.HitTester.
type Chart struct {
	set     model.SeriesSet
	opts    Options
	markers []int
	tooltip *model.PlotPoint

	layout   Layout
	rendered bool
}

var (
	_ interact.Hooks     = (*Chart)(nil)
	_ interact.HitTester = (*Chart)(nil)
)

// New creates a renderer for set.
func New(set model.SeriesSet, opts Options) *Chart {
	return &Chart{set: set, opts: opts.withDefaults()}
}

// OnAfterDraw sets the years painted with the missing-data glyph.
func (c *Chart) OnAfterDraw(markers []int) {
	c.markers = append([]int(nil), markers...)
}

// OnTooltipUpdate pins a tooltip to point, or removes it when nil.
func (c *Chart) OnTooltipUpdate(point *model.PlotPoint) {
	if point == nil {
		c.tooltip = nil
		return
	}
	p := *point
	c.tooltip = &p
}

// Tooltip returns the pinned point, if any.
func (c *Chart) Tooltip() (*model.PlotPoint, bool) {
	return c.tooltip, c.tooltip != nil
}

// Render draws the chart in the given format.
func (c *Chart) Render(w io.Writer, format Format) error {
	graph, err := c.graph()
	if err != nil {
		return err
	}
	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	if err := graph.Render(provider, w); err != nil {
		return eris.Wrap(err, "render: draw chart")
	}
	c.rendered = true
	return nil
}

// Layout returns the pixel mapping of the chart, drawing it once if needed.
func (c *Chart) Layout() (Layout, error) {
	if !c.rendered {
		if err := c.Render(io.Discard, FormatPNG); err != nil {
			return Layout{}, err
		}
	}
	return c.layout, nil
}

// Nearest returns the axis index of the point nearest to a pixel position
// within the hit radius.
func (c *Chart) Nearest(x, y float64) interact.Hit {
	l, err := c.Layout()
	if err != nil {
		return interact.Miss
	}
	return nearest(l, c.set, c.opts.HitRadius, x, y)
}

// maxXTicks bounds the number of x ticks. Wider spans use a multiple of the
// configured step.
const maxXTicks = 50

// xRange spans the axis years and any marker years outside them, widened to
// whole tick steps. go-chart draws over [first tick, last tick], so both ends
// must be ticks for Layout to agree with the drawn series.
func (c *Chart) xRange() (lo, hi, step float64) {
	years := c.set.Years
	lo, hi = float64(years[0]), float64(years[len(years)-1])
	for _, m := range c.markers {
		lo = math.Min(lo, float64(m))
		hi = math.Max(hi, float64(m))
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	step = tickStep(lo, hi, c.opts.XTickStep)
	return math.Floor(lo/step) * step, math.Ceil(hi/step) * step, step
}

func tickStep(lo, hi float64, step int) float64 {
	s := float64(step)
	if n := (hi - lo) / s; n > maxXTicks {
		s *= math.Ceil(n / maxXTicks)
	}
	return s
}

func (c *Chart) graph() (*chart.Chart, error) {
	if len(c.set.Years) == 0 {
		return nil, ErrNoData
	}

	xMin, xMax, xStep := c.xRange()
	c.layout = Layout{XMin: xMin, XMax: xMax, YMin: c.opts.YMin, YMax: c.opts.YMax}

	graph := &chart.Chart{
		Width:  c.opts.Width,
		Height: c.opts.Height,
		Background: chart.Style{
			FillColor: colorCream,
			Padding:   chart.Box{Top: 20, Left: 16, Right: 20, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: drawing.ColorWhite},
		XAxis: chart.XAxis{
			Name:           "Year",
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks:          xTicks(xMin, xMax, xStep),
			GridMajorStyle: chart.Style{StrokeColor: colorGrid, StrokeWidth: 1},
		},
		YAxis: chart.YAxis{
			Name:           "Price (USD)",
			Range:          &chart.ContinuousRange{Min: c.opts.YMin, Max: c.opts.YMax},
			Ticks:          yTicks(c.opts.YMin, c.opts.YMax),
			GridMajorStyle: chart.Style{StrokeColor: colorGrid, StrokeWidth: 1},
		},
		Series: c.chartSeries(),
	}
	graph.Elements = []chart.Renderable{
		c.captureLayout,
		c.drawRanges,
		c.drawMarkers,
		c.drawTooltip,
		c.drawLegend,
	}
	return graph, nil
}

func styleFor(name string) chart.Style {
	switch name {
	case model.SeriesMaxPrice:
		return chart.Style{StrokeColor: colorRed, StrokeWidth: 2, DotColor: colorRed, DotWidth: 3}
	default:
		return chart.Style{StrokeColor: colorGreen, StrokeWidth: 2, DotColor: colorGreen, DotWidth: 3}
	}
}

// chartSeries turns line series into one go-chart series per contiguous run
// of values so no segment crosses a gap.
func (c *Chart) chartSeries() []chart.Series {
	var out []chart.Series

	// The proxy keeps at least one visible series on the chart even when every
	// line point is a gap.
	if proxy := c.proxyValues(); len(proxy) > 0 {
		xs := make([]float64, 0, len(proxy))
		ys := make([]float64, 0, len(proxy))
		for _, v := range proxy {
			xs = append(xs, v[0])
			ys = append(ys, v[1])
		}
		out = append(out, chart.ContinuousSeries{
			Name:    model.SeriesHover,
			Style:   chart.Style{StrokeColor: colorInvisible, StrokeWidth: 1, DotColor: colorInvisible},
			XValues: xs,
			YValues: ys,
		})
	}

	for _, sr := range c.set.Series {
		if sr.Kind != model.SeriesLine {
			continue
		}
		for _, seg := range Segments(sr.Points) {
			xs := make([]float64, len(seg))
			ys := make([]float64, len(seg))
			for i, p := range seg {
				xs[i] = float64(p.Year)
				ys[i] = *p.Value
			}
			out = append(out, chart.ContinuousSeries{
				Name:    sr.Name,
				Style:   styleFor(sr.Name),
				XValues: xs,
				YValues: ys,
			})
		}
	}
	return out
}

func (c *Chart) proxyValues() [][2]float64 {
	var out [][2]float64
	for _, t := range hitTargets(c.set) {
		if t != nil {
			out = append(out, *t)
		}
	}
	if len(out) == 0 {
		for _, y := range c.set.Years {
			out = append(out, [2]float64{float64(y), c.opts.YMin})
		}
	}
	return out
}

// Segments splits points into runs of consecutive non-gap points.
func Segments(points []model.PlotPoint) [][]model.PlotPoint {
	var (
		out [][]model.PlotPoint
		cur []model.PlotPoint
	)
	for _, p := range points {
		if p.IsGap() {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// xTicks places a tick every step from lo to hi inclusive. Both ends are
// expected to be multiples of step.
func xTicks(lo, hi, step float64) []chart.Tick {
	n := int(math.Round((hi - lo) / step))
	ticks := make([]chart.Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		v := lo + float64(i)*step
		ticks = append(ticks, chart.Tick{Value: v, Label: series.FormatYear(v)})
	}
	return ticks
}

func yTicks(lo, hi float64) []chart.Tick {
	step := (hi - lo) / 10
	ticks := make([]chart.Tick, 0, 11)
	for i := 0; i <= 10; i++ {
		v := lo + float64(i)*step
		ticks = append(ticks, chart.Tick{Value: v, Label: series.FormatTick(v)})
	}
	return ticks
}
