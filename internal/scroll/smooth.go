package scroll

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Smooth eases the tracker's scroll offset towards a target, the way a
// browser animates wheel and anchor scrolling.
type Smooth struct {
	tracker  *Tracker
	duration float32
	easing   ease.TweenFunc

	target float64
	tween  *gween.Tween
}

// NewSmooth animates t over duration seconds per scroll request. A duration
// <= 0 jumps immediately.
func NewSmooth(t *Tracker, duration float32) *Smooth {
	return &Smooth{
		tracker:  t,
		duration: duration,
		easing:   ease.OutCubic,
		target:   t.Offset(),
	}
}

// Limits is the reachable offset range: the document top to the end of the
// region.
func (s *Smooth) Limits() (lo, hi float64) {
	start, end := s.tracker.Bounds()
	return math.Min(0, start), math.Max(start, end)
}

func (s *Smooth) clamp(offset float64) float64 {
	lo, hi := s.Limits()
	return math.Max(lo, math.Min(hi, offset))
}

// ScrollBy moves the target by delta. Repeated calls while animating
// accumulate.
func (s *Smooth) ScrollBy(delta float64) {
	s.ScrollTo(s.target + delta)
}

// ScrollTo animates from the current offset to offset
func (s *Smooth) ScrollTo(offset float64) {
	s.target = s.clamp(offset)
	if s.duration <= 0 {
		s.JumpTo(s.target)
		return
	}
	s.tween = gween.New(float32(s.tracker.Offset()), float32(s.target), s.duration, s.easing)
}

// ScrollToProgress animates to the offset that yields progress p
func (s *Smooth) ScrollToProgress(p float64) {
	s.ScrollTo(s.tracker.OffsetFor(p))
}

// JumpTo moves immediately and cancels any animation
func (s *Smooth) JumpTo(offset float64) {
	s.tween = nil
	s.target = s.clamp(offset)
	s.tracker.Scroll(s.target)
}

// Target is where the current animation ends
func (s *Smooth) Target() float64 {
	return s.target
}

// Animating reports whether an animation is in flight
func (s *Smooth) Animating() bool {
	return s.tween != nil
}

// Update advances the animation by dt seconds
func (s *Smooth) Update(dt float32) {
	if s.tween == nil {
		return
	}
	v, done := s.tween.Update(dt)
	if done {
		s.tween = nil
		s.tracker.Scroll(s.target)
		return
	}
	s.tracker.Scroll(float64(v))
}
