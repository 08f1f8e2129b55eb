// Package surface implements the high-density drawing surface the frame
// sequence is rendered onto.
//
// A Surface has a logical size in CSS pixels and a backing store of
// logical × device-pixel-ratio physical pixels. Callers draw in logical
// units; the surface transform maps them to the backing store.
package surface

import (
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/apexscroll/internal/renderer"
	"github.com/ivlev/apexscroll/internal/system"
)

// Surface is owned by a single goroutine; it is not safe for concurrent use.
type Surface struct {
	width, height float64
	ratio         float64

	pix       *image.RGBA
	transform f64.Aff3
	scaler    draw.Interpolator

	version uint64
}

// New allocates a surface. interpolation is one of "nearest", "approx",
// "bilinear" or "catmullrom"; anything else means bilinear.
func New(width, height, ratio float64, interpolation string) *Surface {
	s := &Surface{scaler: Interpolator(interpolation)}
	s.Resize(width, height, ratio)
	return s
}

// Interpolator maps a quality name to an x/image scaler
func Interpolator(name string) draw.Interpolator {
	switch strings.ToLower(name) {
	case "nearest":
		return draw.NearestNeighbor
	case "approx":
		return draw.ApproxBiLinear
	case "catmullrom":
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// BackingDimensions is logical × ratio, truncated like a canvas width
func BackingDimensions(width, height, ratio float64) (int, int) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	w, h := width*ratio, height*ratio
	if !(w > 0) || math.IsInf(w, 0) {
		w = 0
	}
	if !(h > 0) || math.IsInf(h, 0) {
		h = 0
	}
	return int(w), int(h)
}

// Resize re-derives the backing store from the new logical size and ratio.
// The old buffer is recycled and the transform is replaced, never composed
// with the previous one.
func (s *Surface) Resize(width, height, ratio float64) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	s.width, s.height, s.ratio = math.Max(width, 0), math.Max(height, 0), ratio

	if s.pix != nil {
		system.PutImage(s.pix)
		s.pix = nil
	}
	bw, bh := BackingDimensions(width, height, ratio)
	if bw > 0 && bh > 0 {
		s.pix = system.GetImage(bw, bh)
	}

	s.transform = f64.Aff3{
		ratio, 0, 0,
		0, ratio, 0,
	}
	s.version++
}

// Available reports whether there is a backing store to draw into
func (s *Surface) Available() bool {
	return s != nil && s.pix != nil
}

// LogicalSize is the size in CSS pixels
func (s *Surface) LogicalSize() (float64, float64) {
	return s.width, s.height
}

// BackingSize is the size of the pixel buffer
func (s *Surface) BackingSize() (int, int) {
	if s.pix == nil {
		return 0, 0
	}
	b := s.pix.Bounds()
	return b.Dx(), b.Dy()
}

// Ratio is the device pixel ratio currently applied
func (s *Surface) Ratio() float64 {
	return s.ratio
}

// Transform is the logical → backing affine transform
func (s *Surface) Transform() f64.Aff3 {
	return s.transform
}

// Image exposes the backing store. Callers must not keep it across a Resize.
func (s *Surface) Image() *image.RGBA {
	return s.pix
}

// Version increases on every mutation; viewers use it to skip re-uploads.
func (s *Surface) Version() uint64 {
	return s.version
}

// Clear makes every pixel transparent
func (s *Surface) Clear() {
	if s.pix == nil {
		return
	}
	clear(s.pix.Pix)
	s.version++
}

// DrawImage scales img into the logical rect r
func (s *Surface) DrawImage(img image.Image, r renderer.Rect) bool {
	if s.pix == nil || img == nil || r.Empty() {
		return false
	}
	dr := s.deviceRect(r)
	if dr.Empty() {
		return false
	}
	s.scaler.Scale(s.pix, dr, img, img.Bounds(), draw.Over, nil)
	s.version++
	return true
}

// deviceRect maps a logical rect through the transform, snapping to whole
// backing pixels.
func (s *Surface) deviceRect(r renderer.Rect) image.Rectangle {
	m := s.transform
	x0 := m[0]*r.X + m[1]*r.Y + m[2]
	y0 := m[3]*r.X + m[4]*r.Y + m[5]
	x1 := m[0]*(r.X+r.W) + m[1]*(r.Y+r.H) + m[2]
	y1 := m[3]*(r.X+r.W) + m[4]*(r.Y+r.H) + m[5]
	return image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	).Intersect(s.pix.Bounds())
}
