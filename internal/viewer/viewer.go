// Package viewer runs the scroll experience in a desktop window. The ebiten
// game loop is the single UI goroutine: input and resizes are handled in
// Update, the frame surface is painted and uploaded in Draw.
package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivlev/apexscroll/internal/config"
	"github.com/ivlev/apexscroll/internal/overlay"
	"github.com/ivlev/apexscroll/internal/player"
	"github.com/ivlev/apexscroll/internal/scroll"
	"github.com/ivlev/apexscroll/internal/source"
	"github.com/ivlev/apexscroll/internal/surface"
)

const (
	wheelStep      = 120 // logical pixels per wheel notch
	scrollDuration = 0.35
)

var gold = color.RGBA{R: 212, G: 175, B: 55, A: 255}

type Game struct {
	cfg     *config.Config
	log     *slog.Logger
	player  *player.Player
	tracker *scroll.Tracker
	smooth  *scroll.Smooth
	ctrl    *overlay.Controller
	comp    *overlay.Compositor

	fonts *text.GoTextFaceSource
	qr    *ebiten.Image
	frame *ebiten.Image

	// Loading screen, rendered on the CPU by the compositor
	loading    *image.RGBA
	loadingTex *ebiten.Image

	uploaded uint64
	width    float64
	height   float64
	ratio    float64
	debug    bool
}

// NewGame starts loading frames from loader and returns immediately
func NewGame(ctx context.Context, cfg *config.Config, loader source.Loader, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
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
	fonts, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	g := &Game{
		cfg:   cfg,
		log:   logger,
		ctrl:  ctrl,
		comp:  comp,
		fonts: fonts,
		ratio: cfg.Surface.PixelRatio,
	}
	if cfg.BookingURL != "" {
		q, err := qrcode.New(cfg.BookingURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("booking qr: %w", err)
		}
		g.qr = ebiten.NewImageFromImage(q.Image(256))
	}

	surf := surface.New(cfg.Surface.Width, cfg.Surface.Height, cfg.Surface.PixelRatio, cfg.Surface.Interpolation)
	g.width, g.height = cfg.Surface.Width, cfg.Surface.Height
	g.player = player.New(loader, surf, cfg.Frames.Workers, logger)
	g.tracker = scroll.NewTracker(cfg.RegionHeight(), cfg.Surface.Height)
	g.smooth = scroll.NewSmooth(g.tracker, scrollDuration)

	g.player.Initialize(ctx, cfg.Frames.Count)
	g.player.Subscribe(g.tracker)
	return g, nil
}

// Run opens the window and blocks until it is closed
func Run(ctx context.Context, cfg *config.Config, loader source.Loader, logger *slog.Logger) error {
	g, err := NewGame(ctx, cfg, loader, logger)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(int(cfg.Surface.Width), int(cfg.Surface.Height))
	ebiten.SetWindowTitle("APEX")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) loaded() bool {
	select {
	case <-g.player.Ready():
		return true
	default:
		return false
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}

	// The page does not scroll before the sequence is ready
	g.player.Pump()
	if !g.loaded() {
		return nil
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.smooth.ScrollBy(-dy * wheelStep)
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyHome), inpututil.IsKeyJustPressed(ebiten.KeyDigit1):
		g.smooth.ScrollToProgress(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit2):
		g.smooth.ScrollToProgress(0.40)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit3):
		g.smooth.ScrollToProgress(0.80)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		g.smooth.ScrollToProgress(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.smooth.ScrollBy(g.height)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.smooth.ScrollBy(-g.height)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.smooth.ScrollBy(wheelStep / 3)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.smooth.ScrollBy(-wheelStep / 3)
	}
	g.smooth.Update(float32(1 / float64(ebiten.TPS())))
	return nil
}

// Layout reports the backing size so frames are drawn at device resolution.
// Size changes are applied here, before the next Draw.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	ratio := ebiten.Monitor().DeviceScaleFactor()
	if ratio <= 0 {
		ratio = 1
	}
	w, h := float64(outsideWidth), float64(outsideHeight)
	if w != g.width || h != g.height || ratio != g.ratio {
		g.resize(w, h, ratio)
	}
	return surface.BackingDimensions(w, h, ratio)
}

func (g *Game) resize(w, h, ratio float64) {
	p := g.tracker.Value()
	g.width, g.height, g.ratio = w, h, ratio
	g.player.OnResize(w, h, ratio)
	g.tracker.SetLayout(0, g.cfg.Scroll.RegionScreens*h, h)
	// Keep the reader at the same point of the sequence
	g.smooth.JumpTo(g.tracker.OffsetFor(p))
	g.log.Debug("viewport resized", "width", w, "height", h, "ratio", ratio)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.loaded() {
		g.drawLoading(screen)
		return
	}

	g.player.Paint()
	g.upload()
	if g.frame != nil {
		screen.DrawImage(g.frame, nil)
	}

	p := g.tracker.Value()
	for _, st := range g.ctrl.Evaluate(p) {
		if st.Visible() {
			g.drawPhase(screen, g.ctrl.Phase(st.Phase), st)
		}
	}
	if a := g.ctrl.Indicator(p); a > 0 {
		g.drawText(screen, "SCROLL TO EXPLORE", 12, g.width/2, g.height-48, text.AlignCenter, color.White, a*0.5)
	}

	if g.debug {
		stats := g.player.Stats()
		top := "-"
		if st, ok := g.ctrl.Top(p); ok {
			top = fmt.Sprintf("%s %.2f", st.Phase, st.Opacity)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
			"TPS %.0f  FPS %.0f\nprogress %.3f  frame %d/%d\nstage %s  top %s\ndraws %d  skipped %d  failed %d",
			ebiten.ActualTPS(), ebiten.ActualFPS(),
			p, g.player.CurrentFrame()+1, g.player.FrameCount(),
			g.ctrl.Stage(p), top, stats.Draws, stats.Skipped, stats.Failed,
		), 8, 8)
	}
}

// upload copies the surface into the GPU texture when it changed
func (g *Game) upload() {
	surf := g.player.Surface()
	img := surf.Image()
	if img == nil {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if g.frame == nil || g.frame.Bounds().Dx() != w || g.frame.Bounds().Dy() != h {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(w, h)
		g.uploaded = 0
	}
	if v := surf.Version(); v != g.uploaded {
		g.frame.WritePixels(img.Pix)
		g.uploaded = v
	}
}

func (g *Game) drawPhase(screen *ebiten.Image, ph overlay.Phase, st overlay.State) {
	const margin = 64
	x, align := margin, text.AlignStart
	switch ph.ID {
	case overlay.Intro:
		x, align = int(g.width/2), text.AlignCenter
	case overlay.Performance:
		x, align = int(g.width)-margin, text.AlignEnd
	}
	fx := float64(x) + st.OffsetX

	lines := len(ph.Lines)
	block := 16 + 12 + 72 + 12 + float64(lines)*28
	y := g.height/2 - block/2 + st.OffsetY

	g.drawText(screen, ph.Kicker, 16, fx, y, align, gold, st.Opacity*0.8)
	y += 28
	g.drawText(screen, ph.Title, 72, fx, y, align, color.White, st.Opacity)
	y += 72 + 12
	for _, line := range ph.Lines {
		g.drawText(screen, line, 20, fx, y, align, color.White, st.Opacity*0.8)
		y += 28
	}

	if ph.ID == overlay.Performance && g.qr != nil {
		const size = 96
		op := &ebiten.DrawImageOptions{}
		s := size * g.ratio / float64(g.qr.Bounds().Dx())
		op.GeoM.Scale(s, s)
		op.GeoM.Translate((fx-size)*g.ratio, (y+14)*g.ratio)
		op.ColorScale.ScaleAlpha(float32(st.Opacity))
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(g.qr, op)
	}
}

// drawText places s at logical (x, y); size is in logical pixels
func (g *Game) drawText(screen *ebiten.Image, s string, size, x, y float64, align text.Align, c color.Color, opacity float64) {
	if s == "" || opacity <= 0 {
		return
	}
	face := &text.GoTextFace{Source: g.fonts, Size: size * g.ratio}
	op := &text.DrawOptions{}
	op.PrimaryAlign = align
	op.GeoM.Translate(x*g.ratio, y*g.ratio)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(float32(math.Min(1, opacity)))
	text.Draw(screen, s, face, op)
}

func (g *Game) drawLoading(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if g.loading == nil || g.loading.Rect.Dx() != w || g.loading.Rect.Dy() != h {
		if g.loadingTex != nil {
			g.loadingTex.Deallocate()
		}
		g.loading = image.NewRGBA(image.Rect(0, 0, w, h))
		g.loadingTex = ebiten.NewImage(w, h)
	}
	g.comp.Loading(g.loading, g.player.LoadRatio(), g.ratio)
	g.loadingTex.WritePixels(g.loading.Pix)
	screen.DrawImage(g.loadingTex, nil)
}
