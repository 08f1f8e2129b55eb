// Package frameset holds the fixed-length image sequence behind the scroll
// animation and tracks the load state of every element.
//
// Loads run concurrently on background goroutines, but their results are
// only applied by Pump, which the owning goroutine calls. Everything except
// Start's background work must be used from that one goroutine.
package frameset

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/apexscroll/internal/source"
)

// State is the load state of one frame
type State uint8

const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

type result struct {
	index int
	img   image.Image
	err   error
}

// FrameSet is N frames addressed 0..N-1. Membership never changes; each
// element moves out of Pending exactly once.
type FrameSet struct {
	loader source.Loader
	log    *slog.Logger

	states []State
	images []image.Image
	loaded int
	failed int

	started bool
	results chan result
	done    chan struct{}
}

// New creates a frame set of n pending frames served by loader
func New(n int, loader source.Loader, logger *slog.Logger) *FrameSet {
	if n < 0 {
		n = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameSet{
		loader:  loader,
		log:     logger,
		states:  make([]State, n),
		images:  make([]image.Image, n),
		results: make(chan result, n),
		done:    make(chan struct{}),
	}
}

// Start issues one load per frame. It returns immediately; at most workers
// loads are in flight at once (workers <= 0 means no limit). There are no
// retries and no timeouts: ctx cancellation is the only way to stop early,
// and frames cut off that way are reported as failed.
func (fs *FrameSet) Start(ctx context.Context, workers int) {
	if fs.started {
		return
	}
	fs.started = true

	n := len(fs.states)
	if n == 0 {
		close(fs.done)
		return
	}

	go func() {
		defer close(fs.done)

		g := new(errgroup.Group)
		if workers > 0 {
			g.SetLimit(workers)
		}
		for i := 0; i < n; i++ {
			g.Go(func() error {
				img, err := fs.loader.Load(ctx, i)
				// Buffered to n: never blocks
				fs.results <- result{index: i, img: img, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Done is closed once every load has reported. Results may still be waiting
// for Pump.
func (fs *FrameSet) Done() <-chan struct{} {
	return fs.done
}

// Pump applies every load result that has arrived so far without blocking.
// It returns the indices that became Loaded during this call.
func (fs *FrameSet) Pump() []int {
	var fresh []int
	for {
		select {
		case r := <-fs.results:
			if fs.apply(r) {
				fresh = append(fresh, r.index)
			}
		default:
			return fresh
		}
	}
}

func (fs *FrameSet) apply(r result) bool {
	if r.index < 0 || r.index >= len(fs.states) || fs.states[r.index] != Pending {
		return false
	}
	if r.err != nil || r.img == nil || r.img.Bounds().Empty() {
		fs.states[r.index] = Failed
		fs.failed++
		fs.log.Warn("frame load failed", "frame", r.index, "err", r.err)
		return false
	}
	fs.states[r.index] = Loaded
	fs.images[r.index] = r.img
	fs.loaded++
	return true
}

// Len is the fixed frame count
func (fs *FrameSet) Len() int {
	return len(fs.states)
}

// State reports the load state of frame i; out-of-range indices are Failed
func (fs *FrameSet) State(i int) State {
	if i < 0 || i >= len(fs.states) {
		return Failed
	}
	return fs.states[i]
}

// Image returns frame i when it is loaded
func (fs *FrameSet) Image(i int) (image.Image, bool) {
	if fs.State(i) != Loaded {
		return nil, false
	}
	return fs.images[i], true
}

// Ratio is accounted/N in [0,1], counting failures as accounted for.
// An empty set is complete.
func (fs *FrameSet) Ratio() float64 {
	if len(fs.states) == 0 {
		return 1
	}
	return float64(fs.loaded+fs.failed) / float64(len(fs.states))
}

// Complete reports whether every frame is loaded or failed
func (fs *FrameSet) Complete() bool {
	return fs.loaded+fs.failed == len(fs.states)
}

// Counts returns loaded and failed totals
func (fs *FrameSet) Counts() (loaded, failed int) {
	return fs.loaded, fs.failed
}
