// Package interact tracks the pinned-tooltip state of a chart instance.
package interact

import (
	"github.com/sells-group/pricechart/internal/model"
)

// Hit is the outcome of a nearest-point hit test. OK is false when the
// pointer is not near any point.
type Hit struct {
	Index int
	OK    bool
}

// At returns a hit on the point at index i.
func At(i int) Hit { return Hit{Index: i, OK: true} }

// Miss is a hit test that found no point.
var Miss = Hit{}

// HitTester finds the nearest rendered point to a pixel position.
type HitTester interface {
	Nearest(x, y float64) Hit
}

// Hooks is implemented by renderers. OnAfterDraw receives the years that need
// a missing-data marker; OnTooltipUpdate receives the point whose tooltip to
// show, or nil to hide it.
type Hooks interface {
	OnAfterDraw(markers []int)
	OnTooltipUpdate(point *model.PlotPoint)
}

// State is the lock state of one chart instance.
type State struct {
	Locked      bool `json:"locked"`
	LockedIndex *int `json:"lockedIndex"`
}

// Unlocked is the initial state.
var Unlocked = State{}

// Locked returns the state pinned to index i.
func Locked(i int) State {
	return State{Locked: true, LockedIndex: &i}
}

// Index returns the locked index.
func (s State) Index() (int, bool) {
	if !s.Locked || s.LockedIndex == nil {
		return 0, false
	}
	return *s.LockedIndex, true
}

// Next applies a click to s. Clicking the locked point again or clicking empty
// space unlocks; clicking any other point moves the lock there.
func Next(s State, hit Hit) State {
	if !hit.OK {
		return Unlocked
	}
	if i, ok := s.Index(); ok && i == hit.Index {
		return Unlocked
	}
	return Locked(hit.Index)
}

// Controller owns the State of a mounted chart and drives the renderer hooks.
// It is not safe for concurrent use; events arrive serialized from one chart.
type Controller struct {
	set   model.SeriesSet
	hooks Hooks
	state State
}

// Mount creates an unlocked controller and paints the missing-year markers.
func Mount(set model.SeriesSet, hooks Hooks) *Controller {
	return Restore(set, hooks, Unlocked)
}

// Restore mounts a controller in a previously returned state. A lock on an
// index outside the axis is dropped.
func Restore(set model.SeriesSet, hooks Hooks, s State) *Controller {
	c := &Controller{set: set, hooks: hooks}
	if i, ok := s.Index(); ok {
		if _, found := set.PointAt(i); found {
			c.state = Locked(i)
		}
	}
	c.hooks.OnAfterDraw(set.MissingYears)
	c.publish()
	return c
}

// State returns the current lock state.
func (c *Controller) State() State {
	return c.state
}

// Click applies a click hit and updates the pinned tooltip.
func (c *Controller) Click(hit Hit) State {
	if hit.OK {
		if _, ok := c.set.PointAt(hit.Index); !ok {
			hit = Miss
		}
	}
	c.state = Next(c.state, hit)
	c.publish()
	return c.state
}

// ClickAt hit-tests a pixel position and applies the result as a click.
func (c *Controller) ClickAt(t HitTester, x, y float64) State {
	return c.Click(t.Nearest(x, y))
}

// Hover shows the hovered point's tooltip while unlocked. While locked the
// pinned tooltip stays in place and hover events are ignored.
func (c *Controller) Hover(hit Hit) {
	if c.state.Locked {
		return
	}
	if !hit.OK {
		c.hooks.OnTooltipUpdate(nil)
		return
	}
	p, ok := c.set.PointAt(hit.Index)
	if !ok {
		c.hooks.OnTooltipUpdate(nil)
		return
	}
	c.hooks.OnTooltipUpdate(&p)
}

// Active returns the pinned point, if any.
func (c *Controller) Active() (model.PlotPoint, bool) {
	i, ok := c.state.Index()
	if !ok {
		return model.PlotPoint{}, false
	}
	return c.set.PointAt(i)
}

func (c *Controller) publish() {
	if p, ok := c.Active(); ok {
		c.hooks.OnTooltipUpdate(&p)
		return
	}
	c.hooks.OnTooltipUpdate(nil)
}
