package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/series"
)

const (
	tooltipFontSize = 10.0
	tooltipPadding  = 6
	tooltipMaxRunes = 72
	legendFontSize  = 10.0
)

func (c *Chart) captureLayout(_ chart.Renderer, canvasBox chart.Box, _ chart.Style) {
	c.layout.Plot = canvasBox
}

// drawRanges paints a floating bar from min to max for range series points.
func (c *Chart) drawRanges(r chart.Renderer, canvasBox chart.Box, _ chart.Style) {
	sr, ok := c.set.Lookup(model.SeriesPriceRange)
	if !ok {
		return
	}
	span := c.layout.XMax - c.layout.XMin
	half := 3.0
	if span > 0 {
		half = math.Max(half, 0.3*float64(canvasBox.Width())/span)
	}

	r.SetFillColor(colorRangeFill)
	r.SetStrokeColor(colorGold)
	r.SetStrokeWidth(1)
	for _, p := range sr.Points {
		if p.Low == nil || p.High == nil {
			continue
		}
		x, yLow := c.layout.Pixel(float64(p.Year), *p.Low)
		_, yHigh := c.layout.Pixel(float64(p.Year), *p.High)
		left, right := int(x-half), int(x+half)
		r.MoveTo(left, int(yLow))
		r.LineTo(right, int(yLow))
		r.LineTo(right, int(yHigh))
		r.LineTo(left, int(yHigh))
		r.Close()
		r.FillStroke()
	}
}

// drawMarkers paints the missing-data glyph at a fixed price offset.
func (c *Chart) drawMarkers(r chart.Renderer, _ chart.Box, defaults chart.Style) {
	if len(c.markers) == 0 {
		return
	}
	r.SetFont(defaults.Font)
	r.SetFontColor(colorRed)
	r.SetFontSize(16)
	tb := r.MeasureText(c.opts.MarkerGlyph)
	for _, year := range c.markers {
		x, y := c.layout.Pixel(float64(year), c.opts.MarkerOffset)
		r.Text(c.opts.MarkerGlyph, int(x)-tb.Width()/2, int(y)+tb.Height()/2)
	}
}

// anchor returns the pixel position a tooltip for year points at.
func (c *Chart) anchor(year int) (float64, float64) {
	targets := hitTargets(c.set)
	for i, y := range c.set.Years {
		if y == year && targets[i] != nil {
			return c.layout.Pixel(targets[i][0], targets[i][1])
		}
	}
	return c.layout.Pixel(float64(year), c.opts.YMin)
}

func (c *Chart) drawTooltip(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
	if c.tooltip == nil {
		return
	}
	lines := series.TooltipLines(*c.tooltip)
	for i, l := range lines {
		lines[i] = truncate(l, tooltipMaxRunes)
	}

	r.SetFont(defaults.Font)
	r.SetFontSize(tooltipFontSize)
	width, lineHeight := 0, 0
	for _, l := range lines {
		tb := r.MeasureText(l)
		width = max(width, tb.Width())
		lineHeight = max(lineHeight, tb.Height())
	}
	lineHeight += 4
	boxW := width + 2*tooltipPadding
	boxH := lineHeight*len(lines) + 2*tooltipPadding

	px, py := c.anchor(c.tooltip.Year)
	left := int(px) + 10
	if left+boxW > canvasBox.Right {
		left = int(px) - 10 - boxW
	}
	left = max(left, canvasBox.Left)
	top := int(py) - boxH/2
	top = max(canvasBox.Top, min(top, canvasBox.Bottom-boxH))

	r.SetStrokeColor(colorGold)
	r.SetFillColor(colorGold)
	r.SetStrokeWidth(2)
	r.Circle(5, int(px), int(py))
	r.FillStroke()

	r.SetFillColor(colorTooltipFill)
	r.SetStrokeColor(colorBlack)
	r.SetStrokeWidth(1)
	r.MoveTo(left, top)
	r.LineTo(left+boxW, top)
	r.LineTo(left+boxW, top+boxH)
	r.LineTo(left, top+boxH)
	r.Close()
	r.FillStroke()

	r.SetFontColor(colorBlack)
	for i, l := range lines {
		r.Text(l, left+tooltipPadding, top+tooltipPadding+(i+1)*lineHeight-4)
	}
}

// drawLegend lists each named series once, however many segments it was
// split into.
func (c *Chart) drawLegend(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
	r.SetFont(defaults.Font)
	r.SetFontSize(legendFontSize)
	r.SetFontColor(colorBlack)

	x := canvasBox.Left + 12
	y := canvasBox.Top + 16
	for _, sr := range c.set.Series {
		var st chart.Style
		switch sr.Kind {
		case model.SeriesLine:
			st = styleFor(sr.Name)
		case model.SeriesRange:
			st = chart.Style{StrokeColor: colorGold, StrokeWidth: 6}
		default:
			continue
		}
		r.SetStrokeColor(st.StrokeColor)
		r.SetStrokeWidth(st.StrokeWidth)
		r.MoveTo(x, y-4)
		r.LineTo(x+18, y-4)
		r.Stroke()

		r.Text(sr.Name, x+24, y)
		x += 24 + r.MeasureText(sr.Name).Width() + 18
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
