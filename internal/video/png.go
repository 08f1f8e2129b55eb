package video

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/apexscroll/internal/system"
)

// PNGSequence writes numbered PNG files on a bounded pool of goroutines.
// Frames are copied on WriteFrame so callers may reuse their buffer.
type PNGSequence struct {
	dir    string
	g      *errgroup.Group
	ctx    context.Context
	frames int
}

func NewPNGSequence(ctx context.Context, dir string, workers int) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return &PNGSequence{dir: dir, g: g, ctx: gctx}, nil
}

// FramePath is the file written for frame i
func (s *PNGSequence) FramePath(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame_%05d.png", i+1))
}

func (s *PNGSequence) WriteFrame(img image.Image) error {
	// A failed write cancels the group with its error as the cause
	if s.ctx.Err() != nil {
		return context.Cause(s.ctx)
	}
	b := img.Bounds()
	frame := system.GetImage(b.Dx(), b.Dy())
	draw.Draw(frame, frame.Rect, img, b.Min, draw.Src)

	path := s.FramePath(s.frames)
	s.frames++
	// Blocks while every worker is busy
	s.g.Go(func() error {
		defer system.PutImage(frame)
		return writePNG(path, frame)
	})
	return nil
}

// Close waits for pending writes and returns the first failure
func (s *PNGSequence) Close() error {
	return s.g.Wait()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Multi fans each frame out to several sinks
type Multi []Sink

func (m Multi) WriteFrame(img image.Image) error {
	for _, s := range m {
		if err := s.WriteFrame(img); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
