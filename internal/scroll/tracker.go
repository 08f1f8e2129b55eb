// Package scroll turns a scroll offset over a tall tracked region into a
// normalized progress value and publishes it to subscribers.
package scroll

import "math"

// Observable is a read-only progress value that pushes changes
type Observable interface {
	Value() float64
	Subscribe(fn func(float64)) (unsubscribe func())
}

// Progress is clamp((offset-start)/(end-start), 0, 1). Unready input (NaN,
// infinities, an empty region) yields 0.
func Progress(offset, start, end float64) float64 {
	span := end - start
	if !(span > 0) || math.IsInf(span, 0) || math.IsNaN(offset) {
		return 0
	}
	p := (offset - start) / span
	switch {
	case math.IsNaN(p), p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	return p
}

type subscriber struct {
	id int
	fn func(float64)
}

// Tracker follows a region that is pinned while the viewport scrolls through
// it. Progress starts when the region top reaches the viewport top and ends
// when the region bottom reaches the viewport bottom.
//
// Tracker is not safe for concurrent use; it lives on the UI goroutine.
type Tracker struct {
	top      float64
	height   float64
	viewport float64
	offset   float64

	value  float64
	subs   []subscriber
	nextID int
}

// NewTracker tracks a region of regionHeight starting at the document top
func NewTracker(regionHeight, viewportHeight float64) *Tracker {
	t := &Tracker{}
	t.SetLayout(0, regionHeight, viewportHeight)
	return t
}

// Bounds returns the scroll offsets at which progress is 0 and 1
func (t *Tracker) Bounds() (start, end float64) {
	return t.top, t.top + t.height - t.viewport
}

// SetLayout updates the region geometry, e.g. after a viewport resize
func (t *Tracker) SetLayout(top, regionHeight, viewportHeight float64) {
	t.top, t.height, t.viewport = top, regionHeight, viewportHeight
	t.recompute()
}

// Scroll reports the current viewport scroll offset
func (t *Tracker) Scroll(offset float64) {
	t.offset = offset
	t.recompute()
}

// Offset is the last reported scroll offset
func (t *Tracker) Offset() float64 {
	return t.offset
}

// OffsetFor returns the scroll offset that produces progress p
func (t *Tracker) OffsetFor(p float64) float64 {
	start, end := t.Bounds()
	if end <= start {
		return start
	}
	p = math.Max(0, math.Min(1, p))
	return start + p*(end-start)
}

// Value is the current progress
func (t *Tracker) Value() float64 {
	return t.value
}

// Subscribe registers fn for progress changes. fn is not called with the
// current value; read Value for that.
func (t *Tracker) Subscribe(fn func(float64)) (unsubscribe func()) {
	id := t.nextID
	t.nextID++
	t.subs = append(t.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

func (t *Tracker) recompute() {
	start, end := t.Bounds()
	v := Progress(t.offset, start, end)
	if v == t.value {
		return
	}
	t.value = v
	// Snapshot so callbacks may unsubscribe
	subs := append([]subscriber(nil), t.subs...)
	for _, s := range subs {
		s.fn(v)
	}
}
