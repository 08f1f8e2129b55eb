// Package player maps scroll progress to one frame of a fixed image
// sequence and paints it onto a Surface.
//
// The player is driven from a single goroutine (the UI loop). OnProgress only
// latches a target; pixels change in Paint, which the loop calls once per
// visual frame, so a burst of scroll events costs at most one draw.
package player

import (
	"context"
	"log/slog"
	"math"

	"github.com/ivlev/apexscroll/internal/frameset"
	"github.com/ivlev/apexscroll/internal/renderer"
	"github.com/ivlev/apexscroll/internal/source"
	"github.com/ivlev/apexscroll/internal/surface"
)

// Progress is anything that publishes scroll progress
type Progress interface {
	Value() float64
	Subscribe(fn func(float64)) (unsubscribe func())
}

// Stats counts what the player has done so far
type Stats struct {
	Draws   int // frames actually painted
	Skipped int // draws requested for frames that were not drawable
	Resizes int
	Loaded  int
	Failed  int
}

type Player struct {
	loader  source.Loader
	surface *surface.Surface
	log     *slog.Logger
	workers int

	frames  *frameset.FrameSet
	current int
	drawn   int
	slot    drawSlot

	stats Stats
}

// New creates a player that renders into surf. workers bounds concurrent
// loads; <= 0 means all at once.
func New(loader source.Loader, surf *surface.Surface, workers int, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		loader:  loader,
		surface: surf,
		log:     logger,
		workers: workers,
		frames:  frameset.New(0, loader, logger),
		drawn:   -1,
	}
}

// Initialize starts loading frameCount frames and returns immediately.
// Loading finishes (every frame loaded or failed) even when some loads fail.
func (p *Player) Initialize(ctx context.Context, frameCount int) {
	p.frames = frameset.New(frameCount, p.loader, p.log)
	p.current = 0
	p.drawn = -1
	p.slot = drawSlot{}
	p.frames.Start(ctx, p.workers)
	p.log.Debug("frame loading started", "frames", frameCount, "workers", p.workers)
}

// Ready is closed once every load has reported
func (p *Player) Ready() <-chan struct{} {
	return p.frames.Done()
}

// Pump applies finished loads. It is called by LoadRatio, OnProgress and
// Paint, so loops that already call those need not call it.
func (p *Player) Pump() {
	for _, i := range p.frames.Pump() {
		// The latched frame arrived after it was requested
		if i == p.current && p.drawn != p.current {
			p.slot.put(i)
		}
	}
	p.stats.Loaded, p.stats.Failed = p.frames.Counts()
}

// LoadRatio is accounted frames / total in [0,1]
func (p *Player) LoadRatio() float64 {
	p.Pump()
	return p.frames.Ratio()
}

// FrameCount is N
func (p *Player) FrameCount() int {
	return p.frames.Len()
}

// CurrentFrame is the latched frame index
func (p *Player) CurrentFrame() int {
	return p.current
}

// TargetIndex maps progress to round(v×(n-1)) clamped to [0, n-1]
func TargetIndex(v float64, n int) int {
	if n <= 0 || math.IsNaN(v) {
		return 0
	}
	// Clamp before scaling: int() of an out-of-range float is undefined
	v = math.Max(0, math.Min(1, v))
	return int(math.Round(v * float64(n-1)))
}

// OnProgress latches the frame for scroll value v. An unchanged index is a
// no-op; a changed one replaces whatever draw is still waiting for Paint.
func (p *Player) OnProgress(v float64) {
	p.Pump()
	target := TargetIndex(v, p.frames.Len())
	if target == p.current {
		return
	}
	p.current = target
	p.slot.put(target)
}

// Subscribe feeds progress changes from src into OnProgress
func (p *Player) Subscribe(src Progress) (unsubscribe func()) {
	p.OnProgress(src.Value())
	return src.Subscribe(p.OnProgress)
}

// Paint runs the pending draw, if any. It reports whether pixels changed.
func (p *Player) Paint() bool {
	p.Pump()
	i, ok := p.slot.take()
	if !ok {
		return false
	}
	return p.Draw(i)
}

// Pending reports whether a draw is waiting for Paint
func (p *Player) Pending() bool {
	return p.slot.full
}

// Draw paints frame i immediately. Frames that are not loaded are skipped so
// the previous frame stays visible.
func (p *Player) Draw(i int) bool {
	img, ok := p.frames.Image(i)
	if !ok || !p.surface.Available() {
		p.stats.Skipped++
		return false
	}

	w, h := p.surface.LogicalSize()
	b := img.Bounds()
	r := renderer.Contain(float64(b.Dx()), float64(b.Dy()), w, h)

	p.surface.Clear()
	if !p.surface.DrawImage(img, r) {
		p.stats.Skipped++
		return false
	}
	p.drawn = i
	p.stats.Draws++
	return true
}

// OnResize rebuilds the surface for the new logical size and pixel ratio and
// redraws before returning, so no later Paint sees a stale size. When the
// current frame cannot be drawn the last painted one is restored instead.
func (p *Player) OnResize(width, height, ratio float64) {
	p.Pump()
	p.surface.Resize(width, height, ratio)
	p.stats.Resizes++

	if i, ok := p.slot.peek(); ok && i == p.current {
		p.slot.take()
	}
	last := p.drawn
	if p.Draw(p.current) {
		return
	}
	if last >= 0 && last != p.current {
		p.Draw(last)
	}
}

// Surface is the surface the player draws on
func (p *Player) Surface() *surface.Surface {
	return p.surface
}

// Stats returns a snapshot of the counters
func (p *Player) Stats() Stats {
	return p.stats
}
