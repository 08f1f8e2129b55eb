package overlay

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/apexscroll/internal/renderer"
)

func defaultController(t *testing.T) *Controller {
	t.Helper()
	c, err := NewController(DefaultPhases())
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c
}

func TestEvaluateDefaultSchedule(t *testing.T) {
	c := defaultController(t)

	tests := []struct {
		p                 float64
		intro, serv, perf float64
	}{
		{0, 1, 0, 0},
		{0.25, 1, 0, 0},
		{0.29, 0.5, 1.0 / 7, 0},
		{0.33, 0, 5.0 / 7, 0},
		{0.35, 0, 1, 0},
		{0.58, 0, 1, 0},
		{0.62, 0, 0.5, 0.2},
		{0.66, 0, 0, 0.6},
		{0.70, 0, 0, 1},
		{0.95, 0, 0, 1},
		{1, 0, 0, 0.8},
	}

	for _, tt := range tests {
		got := c.Evaluate(tt.p)
		want := []float64{tt.intro, tt.serv, tt.perf}
		for i := range want {
			if math.Abs(got[i].Opacity-want[i]) > 1e-9 {
				t.Errorf("p=%.2f %s: expected opacity %.4f, got %.4f", tt.p, got[i].Phase, want[i], got[i].Opacity)
			}
		}
	}
}

func TestOffsets(t *testing.T) {
	c := defaultController(t)

	st := c.Evaluate(0.165)
	if math.Abs(st[Intro].OffsetY+25) > 1e-9 || st[Intro].OffsetX != 0 {
		t.Errorf("Expected intro to be halfway up (-25), got %+v", st[Intro])
	}
	st = c.Evaluate(0.28)
	if st[Services].OffsetY != 50 {
		t.Errorf("Expected services to start 50 below, got %+v", st[Services])
	}
	st = c.Evaluate(0.65)
	if math.Abs(st[Performance].OffsetX-50) > 1e-9 || st[Performance].OffsetY != 0 {
		t.Errorf("Expected performance to slide on x (50), got %+v", st[Performance])
	}
	st = c.Evaluate(0.9)
	if st[Performance].OffsetX != 0 {
		t.Errorf("Expected performance settled, got %+v", st[Performance])
	}
}

func TestRenderOrder(t *testing.T) {
	c := defaultController(t)
	st := c.Evaluate(0.5)
	for i, s := range st {
		if s.Phase != PhaseID(i) {
			t.Errorf("Position %d: expected %s, got %s", i, PhaseID(i), s.Phase)
		}
	}
}

func TestStage(t *testing.T) {
	c := defaultController(t)

	tests := []struct {
		p    float64
		want Stage
	}{
		{0, IntroOnly},
		{0.2, IntroOnly},
		{0.3, IntroToServices},
		{0.4, ServicesOnly},
		{0.63, ServicesToPerformance},
		{0.8, PerformanceOnly},
		{1, PerformanceOnly},
	}
	for _, tt := range tests {
		if got := c.Stage(tt.p); got != tt.want {
			t.Errorf("Stage(%.2f): expected %s, got %s", tt.p, tt.want, got)
		}
	}

	// Jumping around gives the same answers as scrolling
	for _, p := range []float64{0.8, 0.3, 1, 0, 0.63} {
		if c.Stage(p) != c.Stage(p) {
			t.Errorf("Stage(%.2f) not stable", p)
		}
	}
}

func TestTopPrefersLaterSaturatedPhase(t *testing.T) {
	phases := DefaultPhases()
	// Misconfigured: services saturated across intro's whole range
	phases[Services].Opacity = renderer.NewCurve([]float64{0, 1}, []float64{1, 1})
	c, err := NewController(phases)
	if err != nil {
		t.Fatal(err)
	}
	top, ok := c.Top(0.1)
	if !ok || top.Phase != Services {
		t.Errorf("Expected services on top, got %+v (ok=%v)", top, ok)
	}
}

func TestHiddenStage(t *testing.T) {
	phases := DefaultPhases()
	for i := range phases {
		phases[i].Opacity = renderer.NewCurve([]float64{0}, []float64{0})
	}
	c, err := NewController(phases)
	if err != nil {
		t.Fatal(err)
	}
	if c.Stage(0.5) != Hidden {
		t.Errorf("Expected hidden, got %s", c.Stage(0.5))
	}
	if _, ok := c.Top(0.5); ok {
		t.Error("Expected nothing on top")
	}
}

func TestNewControllerValidation(t *testing.T) {
	if _, err := NewController(DefaultPhases()[:2]); err == nil {
		t.Error("Expected error for two phases")
	}
	swapped := DefaultPhases()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if _, err := NewController(swapped); err == nil {
		t.Error("Expected error for wrong order")
	}
}

func TestIndicatorAndWatch(t *testing.T) {
	c := defaultController(t)
	if c.Indicator(0) != 1 || c.Indicator(0.05) != 0.5 || c.Indicator(0.5) != 0 {
		t.Error("Unexpected indicator curve")
	}

	src := &stubProgress{v: 0.4}
	var got []float64
	unsub := c.Watch(src, func(p float64, st []State) {
		got = append(got, st[Services].Opacity)
	})
	src.set(0.62)
	unsub()
	src.set(0.1)

	if len(got) != 2 || got[0] != 1 || math.Abs(got[1]-0.5) > 1e-9 {
		t.Errorf("Unexpected watch values %v", got)
	}
}

type stubProgress struct {
	v  float64
	fn func(float64)
}

func (s *stubProgress) Value() float64 { return s.v }

func (s *stubProgress) Subscribe(fn func(float64)) func() {
	s.fn = fn
	return func() { s.fn = nil }
}

func (s *stubProgress) set(v float64) {
	s.v = v
	if s.fn != nil {
		s.fn(v)
	}
}

func grey(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 40, 40, 40, 255
	}
	return img
}

func TestComposeDrawsVisiblePhases(t *testing.T) {
	c := defaultController(t)
	comp, err := NewCompositor(c, "https://apex.example/book")
	if err != nil {
		t.Fatalf("NewCompositor failed: %v", err)
	}

	frame := grey(640, 360)
	dst := image.NewRGBA(frame.Bounds())

	for _, p := range []float64{0, 0.5, 0.8} {
		comp.Compose(dst, frame, p, 1)
		if bytes.Equal(dst.Pix, frame.Pix) {
			t.Errorf("p=%.2f: expected overlay pixels", p)
		}
	}
}

func TestComposeWithNothingVisible(t *testing.T) {
	phases := DefaultPhases()
	for i := range phases {
		phases[i].Opacity = renderer.NewCurve([]float64{0}, []float64{0})
	}
	c, _ := NewController(phases)
	c.SetIndicator(renderer.NewCurve([]float64{0}, []float64{0}))
	comp, err := NewCompositor(c, "")
	if err != nil {
		t.Fatal(err)
	}

	frame := grey(64, 64)
	dst := image.NewRGBA(frame.Bounds())
	comp.Compose(dst, frame, 0.5, 2)
	if !bytes.Equal(dst.Pix, frame.Pix) {
		t.Error("Expected output identical to the frame")
	}
}

func TestLoadingScreen(t *testing.T) {
	comp, _ := NewCompositor(defaultController(t), "")
	dst := image.NewRGBA(image.Rect(0, 0, 400, 300))
	comp.Loading(dst, 0.5, 1)

	// Bar is 192 wide centered: left half filled red, right half dark
	y := 150 + 32 + 1
	if got := dst.RGBAAt(200-96+10, y); got != (color.RGBA{R: 225, G: 6, B: 0, A: 255}) {
		t.Errorf("Expected filled bar, got %v", got)
	}
	if got := dst.RGBAAt(200+96-10, y); got != (color.RGBA{R: 31, G: 31, B: 31, A: 255}) {
		t.Errorf("Expected empty bar, got %v", got)
	}
}
