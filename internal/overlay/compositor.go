package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	gold  = color.NRGBA{R: 212, G: 175, B: 55, A: 255}
	red   = color.NRGBA{R: 225, G: 6, B: 0, A: 255}
)

// Compositor flattens the frame surface and the phase overlays into one
// image for headless previews. Everything is laid out in logical pixels and
// scaled by the device pixel ratio.
type Compositor struct {
	ctrl *Controller
	face font.Face
	qr   image.Image
}

// NewCompositor lays out ctrl's phases. A non-empty bookingURL adds a QR
// badge to the performance phase.
func NewCompositor(ctrl *Controller, bookingURL string) (*Compositor, error) {
	c := &Compositor{ctrl: ctrl, face: basicfont.Face7x13}
	if bookingURL != "" {
		q, err := qrcode.New(bookingURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("booking qr: %w", err)
		}
		c.qr = q.Image(256)
	}
	return c, nil
}

// Compose writes frame plus overlays at progress p into dst. dst and frame
// share the same bounds (the backing size).
func (c *Compositor) Compose(dst, frame *image.RGBA, p, ratio float64) {
	b := dst.Bounds()
	if frame != nil {
		draw.Draw(dst, b, frame, frame.Bounds().Min, draw.Src)
	} else {
		draw.Draw(dst, b, image.Black, image.Point{}, draw.Src)
	}
	if ratio <= 0 {
		ratio = 1
	}
	w, h := float64(b.Dx())/ratio, float64(b.Dy())/ratio

	for _, st := range c.ctrl.Evaluate(p) {
		if !st.Visible() {
			continue
		}
		c.drawPhase(dst, c.ctrl.Phase(st.Phase), st, w, h, ratio)
	}

	if a := c.ctrl.Indicator(p); a > 0 {
		const hint = "SCROLL TO EXPLORE"
		s := textScale(1, ratio)
		tw := c.textWidth(hint, s)
		x := int(w*ratio/2) - tw/2
		y := int((h - 48) * ratio)
		c.drawText(dst, hint, x, y, s, fade(white, a*0.5))
	}
}

// Loading draws the progress screen shown until every frame is accounted for
func (c *Compositor) Loading(dst *image.RGBA, loadRatio, ratio float64) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Black, image.Point{}, draw.Src)
	if ratio <= 0 {
		ratio = 1
	}
	pct := fmt.Sprintf("%d%%", int(math.Round(loadRatio*100)))
	s := textScale(3, ratio)
	cx, cy := b.Dx()/2, b.Dy()/2
	c.drawText(dst, pct, cx-c.textWidth(pct, s)/2, cy-13*s, s, white)

	label := "LOADING EXPERIENCE"
	ls := textScale(1, ratio)
	c.drawText(dst, label, cx-c.textWidth(label, ls)/2, cy+8*ls, ls, fade(white, 0.6))

	barW, barH := int(192*ratio), int(math.Max(1, 4*ratio))
	bar := image.Rect(cx-barW/2, cy+32*ls, cx+barW/2, cy+32*ls+barH)
	draw.Draw(dst, bar, image.NewUniform(color.NRGBA{R: 31, G: 31, B: 31, A: 255}), image.Point{}, draw.Src)
	fill := bar
	fill.Max.X = bar.Min.X + int(float64(barW)*math.Max(0, math.Min(1, loadRatio)))
	draw.Draw(dst, fill, image.NewUniform(red), image.Point{}, draw.Src)
}

func (c *Compositor) drawPhase(dst *image.RGBA, ph Phase, st State, w, h, ratio float64) {
	titleS, bodyS := textScale(4, ratio), textScale(1.5, ratio)
	lineH := int(float64(13*bodyS) * 1.6)

	blockH := 13*bodyS + 13*titleS + lineH*(len(ph.Lines)+1)
	top := int((h*ratio)/2) - blockH/2 + int(st.OffsetY*ratio)
	margin := int(64 * ratio)
	dx := int(st.OffsetX * ratio)
	full := int(w * ratio)

	place := func(s string, scale int) int {
		tw := c.textWidth(s, scale)
		switch ph.ID {
		case Intro:
			return full/2 - tw/2 + dx
		case Performance:
			return full - margin - tw + dx
		default:
			return margin + dx
		}
	}

	y := top
	c.drawText(dst, ph.Kicker, place(ph.Kicker, bodyS), y, bodyS, fade(gold, st.Opacity*0.8))
	y += lineH
	c.drawText(dst, ph.Title, place(ph.Title, titleS), y, titleS, fade(white, st.Opacity))
	y += 13*titleS + lineH/2
	for _, line := range ph.Lines {
		c.drawText(dst, line, place(line, bodyS), y, bodyS, fade(white, st.Opacity*0.8))
		y += lineH
	}

	if ph.ID == Performance && c.qr != nil {
		size := int(96 * ratio)
		x := full - margin - size + dx
		r := image.Rect(x, y+lineH/2, x+size, y+lineH/2+size)
		mask := image.NewUniform(color.Alpha{A: uint8(255 * st.Opacity)})
		draw.ApproxBiLinear.Scale(dst, r, c.qr, c.qr.Bounds(), draw.Over, &draw.Options{
			DstMask:  mask,
			DstMaskP: r.Min,
		})
	}
}

// drawText renders s with its top-left corner at (x, y), magnified by scale
func (c *Compositor) drawText(dst *image.RGBA, s string, x, y, scale int, col color.NRGBA) {
	if s == "" || col.A == 0 {
		return
	}
	m := c.face.Metrics()
	tw := font.MeasureString(c.face, s).Ceil()
	th := m.Height.Ceil()
	if tw <= 0 || th <= 0 {
		return
	}

	glyphs := image.NewAlpha(image.Rect(0, 0, tw, th))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.Opaque,
		Face: c.face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)

	mask := glyphs
	if scale > 1 {
		mask = image.NewAlpha(image.Rect(0, 0, tw*scale, th*scale))
		draw.NearestNeighbor.Scale(mask, mask.Bounds(), glyphs, glyphs.Bounds(), draw.Src, nil)
	}

	r := image.Rect(x, y, x+mask.Rect.Dx(), y+mask.Rect.Dy())
	draw.DrawMask(dst, r, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

func (c *Compositor) textWidth(s string, scale int) int {
	return font.MeasureString(c.face, s).Ceil() * scale
}

// textScale is the integer glyph magnification for a logical size factor
func textScale(logical, ratio float64) int {
	s := int(math.Round(logical * ratio))
	if s < 1 {
		return 1
	}
	return s
}

func fade(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp01(opacity)))
	return c
}
