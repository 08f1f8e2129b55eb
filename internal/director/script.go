package director

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/apexscroll/internal/renderer"
)

var ErrEmptyScript = errors.New("script has no steps")

// Script drives scroll progress over time for headless previews
type Script struct {
	Version  string  `yaml:"version"`
	Duration float64 `yaml:"duration"` // Total duration in seconds
	Steps    []Step  `yaml:"steps"`
}

// Step is a scroll position at a specific time
type Step struct {
	At       float64 `yaml:"at"`             // Time offset in seconds
	Progress float64 `yaml:"progress"`       // Scroll progress in [0,1]
	Ease     string  `yaml:"ease,omitempty"` // Easing towards the next step
}

// DefaultScript scrolls halfway, jumps back like an anchor link, then
// scrolls through to the end.
func DefaultScript(duration float64) *Script {
	at := func(f float64) float64 { return math.Round(f*duration*1000) / 1000 }
	return &Script{
		Version:  "1.0",
		Duration: duration,
		Steps: []Step{
			{At: 0, Progress: 0, Ease: "in-out-sine"},
			{At: at(0.40), Progress: 0.5},
			{At: at(0.48), Progress: 0.5},
			{At: at(0.50), Progress: 0.1},
			{At: at(0.58), Progress: 0.1, Ease: "in-out-cubic"},
			{At: at(1), Progress: 1},
		},
	}
}

func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	if s.Duration <= 0 {
		return fmt.Errorf("script duration must be positive, got %g", s.Duration)
	}
	for i, st := range s.Steps {
		if st.Progress < 0 || st.Progress > 1 {
			return fmt.Errorf("step %d: progress %g outside [0,1]", i, st.Progress)
		}
	}
	return s.curve().Validate()
}

func (s *Script) curve() renderer.Curve {
	c := make(renderer.Curve, len(s.Steps))
	for i, st := range s.Steps {
		c[i] = renderer.Keyframe{At: st.At, Value: st.Progress, Ease: st.Ease}
	}
	return c
}

// ProgressAt samples the script at t seconds
func (s *Script) ProgressAt(t float64) float64 {
	return s.curve().At(t)
}

// Sample returns one progress value per output frame
func (s *Script) Sample(fps int) []float64 {
	if fps <= 0 || len(s.Steps) == 0 {
		return nil
	}
	n := int(math.Round(s.Duration * float64(fps)))
	c := s.curve()
	out := make([]float64, n)
	for k := range out {
		out[k] = c.At(float64(k) / float64(fps))
	}
	return out
}
