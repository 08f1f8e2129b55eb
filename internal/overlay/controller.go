package overlay

import (
	"fmt"

	"github.com/ivlev/apexscroll/internal/renderer"
)

// Stage is the derived handoff state at a progress value
type Stage int

const (
	Hidden Stage = iota
	IntroOnly
	IntroToServices
	ServicesOnly
	ServicesToPerformance
	PerformanceOnly
)

var stageNames = [...]string{
	"HIDDEN",
	"INTRO_ONLY",
	"INTRO_TO_SERVICES",
	"SERVICES_ONLY",
	"SERVICES_TO_PERFORMANCE",
	"PERFORMANCE_ONLY",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Progress is the scroll value the controller follows
type Progress interface {
	Value() float64
	Subscribe(fn func(float64)) (unsubscribe func())
}

// Controller evaluates the intro, services and performance phases
type Controller struct {
	phases    [3]Phase
	indicator renderer.Curve
}

// NewController takes exactly three phases in intro, services, performance
// order.
func NewController(phases []Phase) (*Controller, error) {
	if len(phases) != 3 {
		return nil, fmt.Errorf("%w: got %d phases", errPhaseOrder, len(phases))
	}
	c := &Controller{indicator: DefaultIndicator()}
	for i, ph := range phases {
		if ph.ID != PhaseID(i) {
			return nil, fmt.Errorf("%w: %s at position %d", errPhaseOrder, ph.ID, i)
		}
		if err := ph.Validate(); err != nil {
			return nil, err
		}
		c.phases[i] = ph
	}
	return c, nil
}

// SetIndicator replaces the "scroll to explore" hint curve
func (c *Controller) SetIndicator(curve renderer.Curve) {
	c.indicator = curve
}

// Phase returns the configuration of one phase
func (c *Controller) Phase(id PhaseID) Phase {
	return c.phases[id]
}

// Evaluate returns all phases at p in render order, later entries on top
func (c *Controller) Evaluate(p float64) []State {
	out := make([]State, len(c.phases))
	for i, ph := range c.phases {
		out[i] = ph.Evaluate(p)
	}
	return out
}

// Stage classifies p by which phases are visible. When more than two phases
// show, the pair involving the latest phase wins.
func (c *Controller) Stage(p float64) Stage {
	var vis [3]bool
	n := 0
	for i, ph := range c.phases {
		if ph.Evaluate(p).Visible() {
			vis[i] = true
			n++
		}
	}

	switch {
	case n == 0:
		return Hidden
	case n == 1 && vis[Intro]:
		return IntroOnly
	case n == 1 && vis[Services]:
		return ServicesOnly
	case n == 1:
		return PerformanceOnly
	case vis[Performance]:
		return ServicesToPerformance
	default:
		return IntroToServices
	}
}

// Top returns the phase rendered in front at p: the latest fully opaque one,
// else the latest visible one. ok is false when nothing shows.
func (c *Controller) Top(p float64) (State, bool) {
	states := c.Evaluate(p)
	for i := len(states) - 1; i >= 0; i-- {
		if states[i].Opacity >= 1 {
			return states[i], true
		}
	}
	for i := len(states) - 1; i >= 0; i-- {
		if states[i].Visible() {
			return states[i], true
		}
	}
	return State{}, false
}

// Indicator is the opacity of the scroll hint at p
func (c *Controller) Indicator(p float64) float64 {
	return clamp01(c.indicator.At(p))
}

// Watch calls fn with freshly evaluated states now and on every change of src
func (c *Controller) Watch(src Progress, fn func(p float64, states []State)) (unsubscribe func()) {
	fn(src.Value(), c.Evaluate(src.Value()))
	return src.Subscribe(func(p float64) {
		fn(p, c.Evaluate(p))
	})
}
