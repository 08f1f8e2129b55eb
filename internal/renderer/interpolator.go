package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/tanema/gween/ease"
)

// Keyframe pins a curve to Value at scroll progress At
type Keyframe struct {
	At    float64 `yaml:"at"`
	Value float64 `yaml:"value"`
	// Ease shapes the segment that starts at this keyframe. Empty means linear.
	Ease string `yaml:"ease,omitempty"`
}

// Curve is an ordered list of keyframes evaluated piecewise
type Curve []Keyframe

// NewCurve builds a linear curve from parallel input/output slices, the same
// shape the page used for its transforms ([0, 0.25, 0.33] -> [1, 1, 0]).
func NewCurve(at, values []float64) Curve {
	n := len(at)
	if len(values) < n {
		n = len(values)
	}
	c := make(Curve, n)
	for i := 0; i < n; i++ {
		c[i] = Keyframe{At: at[i], Value: values[i]}
	}
	return c
}

// Validate checks ordering and easing names
func (c Curve) Validate() error {
	for i, kf := range c {
		if math.IsNaN(kf.At) || math.IsNaN(kf.Value) {
			return fmt.Errorf("keyframe %d: NaN", i)
		}
		if i > 0 && kf.At < c[i-1].At {
			return fmt.Errorf("keyframe %d: at %.3f before %.3f", i, kf.At, c[i-1].At)
		}
		if _, ok := easings[strings.ToLower(kf.Ease)]; !ok {
			return fmt.Errorf("keyframe %d: unknown ease %q", i, kf.Ease)
		}
	}
	return nil
}

// At evaluates the curve at p. Before the first keyframe the first value
// holds, after the last one the last value holds.
func (c Curve) At(p float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if math.IsNaN(p) || p <= c[0].At {
		return c[0].Value
	}
	last := c[len(c)-1]
	if p >= last.At {
		return last.Value
	}

	// Find surrounding keyframes
	var prev, next Keyframe
	for i := 0; i < len(c)-1; i++ {
		if p >= c[i].At && p < c[i+1].At {
			prev, next = c[i], c[i+1]
			break
		}
	}

	span := next.At - prev.At
	if span <= 0 {
		return next.Value
	}
	t := (p - prev.At) / span
	t = applyEase(prev.Ease, t)

	return lerp(prev.Value, next.Value, t)
}

var easings = map[string]ease.TweenFunc{
	"":             ease.Linear,
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
}

// Ease resolves an easing name. Unknown names fall back to linear.
func Ease(name string) ease.TweenFunc {
	if fn, ok := easings[strings.ToLower(name)]; ok {
		return fn
	}
	return ease.Linear
}

// applyEase maps t in [0,1] through a gween easing function
func applyEase(name string, t float64) float64 {
	if name == "" || strings.EqualFold(name, "linear") {
		return t
	}
	return float64(Ease(name)(float32(t), 0, 1, 1))
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
