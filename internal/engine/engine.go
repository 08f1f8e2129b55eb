package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ivlev/apexscroll/internal/config"
	"github.com/ivlev/apexscroll/internal/director"
	"github.com/ivlev/apexscroll/internal/overlay"
	"github.com/ivlev/apexscroll/internal/player"
	"github.com/ivlev/apexscroll/internal/scroll"
	"github.com/ivlev/apexscroll/internal/source"
	"github.com/ivlev/apexscroll/internal/surface"
	"github.com/ivlev/apexscroll/internal/system"
	"github.com/ivlev/apexscroll/internal/video"
)

// frameSizer is implemented by loaders that can report a frame's size
// without decoding it
type frameSizer interface {
	Dimensions(index int) (int, int, error)
}

// Preview replays a scroll script against the frame sequence headlessly and
// hands every composed frame to a sink.
type Preview struct {
	Config *config.Config
	Loader source.Loader
	Script *director.Script
	Sink   video.Sink

	// Console progress output, os.Stdout when nil
	Out io.Writer
	Log *slog.Logger

	pollInterval time.Duration
}

func NewPreview(cfg *config.Config, loader source.Loader, script *director.Script, sink video.Sink) *Preview {
	return &Preview{
		Config: cfg,
		Loader: loader,
		Script: script,
		Sink:   sink,
	}
}

func (p *Preview) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

// Run loads every frame, sweeps the script and closes the sink. The sink is
// closed even when the sweep fails.
func (p *Preview) Run(ctx context.Context) (*system.Report, error) {
	startTime := time.Now()
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Log == nil {
		p.Log = slog.Default()
	}
	if p.pollInterval == 0 {
		p.pollInterval = 50 * time.Millisecond
	}
	cfg := p.Config
	if p.Sink == nil {
		return nil, fmt.Errorf("preview has no output sink")
	}

	script := p.Script
	if script == nil {
		script = director.DefaultScript(cfg.Preview.Duration)
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	phases, err := cfg.OverlayPhases()
	if err != nil {
		return nil, err
	}
	ctrl, err := overlay.NewController(phases)
	if err != nil {
		return nil, err
	}
	comp, err := overlay.NewCompositor(ctrl, cfg.BookingURL)
	if err != nil {
		return nil, err
	}

	surf := surface.New(cfg.Surface.Width, cfg.Surface.Height, cfg.Surface.PixelRatio, cfg.Surface.Interpolation)
	pl := player.New(p.Loader, surf, cfg.Frames.Workers, p.Log)
	tracker := scroll.NewTracker(cfg.RegionHeight(), cfg.Surface.Height)

	bw, bh := surf.BackingSize()
	fmt.Fprintln(p.Out, "--- [PROJECT: APEX SCROLL PREVIEW] ---")
	p.printf("[*] Кадров: %d | Поверхность: %gx%g @%gx (%dx%d)\n", cfg.Frames.Count, cfg.Surface.Width, cfg.Surface.Height, cfg.Surface.PixelRatio, bw, bh)
	if sz, ok := p.Loader.(frameSizer); ok {
		if w, h, err := sz.Dimensions(0); err == nil {
			p.printf("[*] Размер исходного кадра: %dx%d\n", w, h)
		} else {
			p.Log.Debug("first frame size unavailable", "error", err)
		}
	}
	p.printf("[*] Сценарий: %.2fs @ %d FPS | Область прокрутки: %g экранов\n", script.Duration, cfg.Preview.FPS, cfg.Scroll.RegionScreens)
	fmt.Fprintln(p.Out, "-----------------------------")

	pl.Initialize(ctx, cfg.Frames.Count)
	unsubscribe := pl.Subscribe(tracker)
	defer unsubscribe()

	report := &system.Report{Build: cfg.BuildVersion, Frames: cfg.Frames.Count}

	loadStart := time.Now()
	if err := p.waitLoaded(ctx, pl); err != nil {
		p.Sink.Close()
		return nil, err
	}
	report.Load = time.Since(loadStart)

	stats := pl.Stats()
	report.Failed = stats.Failed
	if stats.Loaded == 0 {
		p.printf("[!] Не удалось загрузить ни одного кадра, превью покажет только оверлеи\n")
	} else if stats.Failed > 0 {
		p.printf("[!] Не загружено %d из %d кадров, они будут пропущены\n", stats.Failed, cfg.Frames.Count)
	}

	sweepStart := time.Now()
	steps, err := p.sweep(ctx, script, tracker, pl, ctrl, comp)
	report.Steps = steps
	report.Sweep = time.Since(sweepStart)
	// A sink that failed mid-sweep may only surface a cancellation from
	// WriteFrame while its Close carries the cause. An interrupt from ctx
	// stays an interrupt.
	sinkCanceled := errors.Is(err, context.Canceled) && ctx.Err() == nil
	if cerr := p.Sink.Close(); cerr != nil && (err == nil || sinkCanceled) {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	report.Draws = pl.Stats().Draws
	report.Total = time.Since(startTime)
	return report, nil
}

func (p *Preview) waitLoaded(ctx context.Context, pl *player.Player) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	last := -1
	for {
		pct := int(pl.LoadRatio() * 100)
		if pct != last {
			p.printf("[>] Загрузка: %d%%\n", pct)
			last = pct
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pl.Ready():
			if pct := int(pl.LoadRatio() * 100); pct != last {
				p.printf("[>] Загрузка: %d%%\n", pct)
			}
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Preview) sweep(
	ctx context.Context,
	script *director.Script,
	tracker *scroll.Tracker,
	pl *player.Player,
	ctrl *overlay.Controller,
	comp *overlay.Compositor,
) (int, error) {
	surf := pl.Surface()
	w, h := surf.BackingSize()
	dst := system.GetImage(w, h)
	defer system.PutImage(dst)

	samples := script.Sample(p.Config.Preview.FPS)
	stage := overlay.Hidden - 1
	step := 0
	unwatch := ctrl.Watch(tracker, func(progress float64, _ []overlay.State) {
		s := ctrl.Stage(progress)
		if s == stage {
			return
		}
		stage = s
		args := []any{"step", step, "progress", progress, "stage", s.String()}
		if top, ok := ctrl.Top(progress); ok {
			args = append(args, "top", top.Phase.String())
		}
		p.Log.Debug("stage changed", args...)
	})
	defer unwatch()

	for k, v := range samples {
		if err := ctx.Err(); err != nil {
			return k, err
		}

		step = k
		tracker.Scroll(tracker.OffsetFor(v))
		pl.Paint()

		progress := tracker.Value()
		comp.Compose(dst, surf.Image(), progress, surf.Ratio())
		if err := p.Sink.WriteFrame(dst); err != nil {
			return k, fmt.Errorf("write step %d: %w", k, err)
		}

		if (k+1)%p.Config.Preview.FPS == 0 || k == len(samples)-1 {
			p.printf("[>] Ready: %d/%d (frame %d)\n", k+1, len(samples), pl.CurrentFrame())
		}
	}
	return len(samples), nil
}
