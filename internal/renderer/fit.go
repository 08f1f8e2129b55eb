package renderer

// Rect is a placement in logical (CSS) pixels
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rect covers no area
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contain places an image of imgW×imgH inside a surface of surfW×surfH
// without cropping or distortion, centered on the axis that does not fit.
// Degenerate sizes yield an empty rect.
func Contain(imgW, imgH, surfW, surfH float64) Rect {
	if imgW <= 0 || imgH <= 0 || surfW <= 0 || surfH <= 0 {
		return Rect{}
	}

	imgAspect := imgW / imgH
	surfAspect := surfW / surfH

	if imgAspect > surfAspect {
		// Image is wider - fit to width
		h := surfW / imgAspect
		return Rect{X: 0, Y: (surfH - h) / 2, W: surfW, H: h}
	}

	// Image is taller - fit to height
	w := surfH * imgAspect
	return Rect{X: (surfW - w) / 2, Y: 0, W: w, H: surfH}
}
