// Package overlay computes the visibility and position of the three content
// phases layered over the frame sequence.
//
// Every value is a pure function of scroll progress. There is no memory of
// the previous phase, so jumping to any progress value gives the same result
// as scrolling there.
package overlay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivlev/apexscroll/internal/renderer"
)

// PhaseID names a phase; the order is also the render order
type PhaseID int

const (
	Intro PhaseID = iota
	Services
	Performance
)

var phaseNames = [...]string{"intro", "services", "performance"}

func (id PhaseID) String() string {
	if id < 0 || int(id) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(id))
	}
	return phaseNames[id]
}

// ParsePhaseID accepts "intro" (or "hero"), "services" and "performance"
func ParsePhaseID(s string) (PhaseID, error) {
	switch strings.ToLower(s) {
	case "intro", "hero":
		return Intro, nil
	case "services":
		return Services, nil
	case "performance":
		return Performance, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Axis is the direction a phase slides in from
type Axis int

const (
	AxisY Axis = iota
	AxisX
)

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "", "y":
		return AxisY, nil
	case "x":
		return AxisX, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Phase is static configuration for one overlay
type Phase struct {
	ID      PhaseID
	Opacity renderer.Curve
	Offset  renderer.Curve
	Axis    Axis

	// Content shown by compositors
	Kicker string
	Title  string
	Lines  []string
}

// State is a phase evaluated at one progress value
type State struct {
	Phase   PhaseID
	Opacity float64
	OffsetX float64
	OffsetY float64
}

// Visible reports whether any of the phase shows
func (s State) Visible() bool {
	return s.Opacity > 0
}

// Evaluate computes the phase at progress p
func (ph Phase) Evaluate(p float64) State {
	st := State{Phase: ph.ID, Opacity: clamp01(ph.Opacity.At(p))}
	off := ph.Offset.At(p)
	if ph.Axis == AxisX {
		st.OffsetX = off
	} else {
		st.OffsetY = off
	}
	return st
}

// Validate checks both curves
func (ph Phase) Validate() error {
	if len(ph.Opacity) == 0 {
		return fmt.Errorf("%s: empty opacity curve", ph.ID)
	}
	if err := ph.Opacity.Validate(); err != nil {
		return fmt.Errorf("%s opacity: %w", ph.ID, err)
	}
	if err := ph.Offset.Validate(); err != nil {
		return fmt.Errorf("%s offset: %w", ph.ID, err)
	}
	return nil
}

var errPhaseOrder = errors.New("phases must be intro, services, performance")

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
