package system

import (
	"image"
	"sync"
)

// ImagePool recycles *image.RGBA backing stores by size. Surfaces are
// reallocated on every resize, and a window dragged across a few sizes
// keeps hitting the same ones.
type ImagePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage returns a cleared w×h RGBA from the shared pool
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage hands img back to the shared pool
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a w×h image with every pixel transparent. Recycled buffers are
// zeroed so no earlier content survives.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	key := image.Point{X: w, Y: h}
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rect(0, 0, w, h))
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	key := img.Rect.Size()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
