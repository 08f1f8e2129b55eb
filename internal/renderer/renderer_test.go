package renderer

import (
	"math"
	"testing"
)

func TestCurveAt(t *testing.T) {
	services := NewCurve([]float64{0.28, 0.35, 0.58, 0.66}, []float64{0, 1, 1, 0})

	tests := []struct {
		p    float64
		want float64
	}{
		{0.0, 0},     // Before first keyframe
		{0.28, 0},    // First keyframe
		{0.315, 0.5}, // Midpoint of fade-in
		{0.35, 1},    // Saturated
		{0.5, 1},     // Hold
		{0.58, 1},    // Start of fade-out
		{0.62, 0.5},  // Midpoint of fade-out
		{0.66, 0},    // Last keyframe
		{1.0, 0},     // After last keyframe
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		got := services.At(tt.p)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("At(%.3f): expected %.4f, got %.4f", tt.p, tt.want, got)
		}
	}
}

func TestCurveExactAtKeyframes(t *testing.T) {
	perf := NewCurve([]float64{0.60, 0.70, 0.95, 1}, []float64{0, 1, 1, 0.8})
	for _, kf := range perf {
		if got := perf.At(kf.At); got != kf.Value {
			t.Errorf("At(%.2f): expected exactly %.2f, got %v", kf.At, kf.Value, got)
		}
	}
}

func TestCurveEasing(t *testing.T) {
	c := Curve{
		{At: 0, Value: 0, Ease: "in-out-cubic"},
		{At: 1, Value: 100},
	}
	mid := c.At(0.5)
	if math.Abs(mid-50) > 0.5 {
		t.Errorf("Expected symmetric easing to pass ~50 at midpoint, got %.3f", mid)
	}
	early := c.At(0.1)
	if early >= 10 {
		t.Errorf("Expected eased value below linear at 0.1, got %.3f", early)
	}
}

func TestCurveValidate(t *testing.T) {
	if err := NewCurve([]float64{0, 0.5, 1}, []float64{0, 1, 0}).Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := NewCurve([]float64{0.5, 0.2}, []float64{0, 1}).Validate(); err == nil {
		t.Error("Expected error for unordered keyframes")
	}
	bad := Curve{{At: 0, Value: 0, Ease: "wobble"}, {At: 1, Value: 1}}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for unknown ease")
	}
}

func TestCurveDegenerateSegment(t *testing.T) {
	step := NewCurve([]float64{0, 0.5, 0.5, 1}, []float64{0, 0, 1, 1})
	if got := step.At(0.5); got != 1 {
		t.Errorf("Expected step to land on 1 at 0.5, got %v", got)
	}
	if got := step.At(0.49); got != 0 {
		t.Errorf("Expected 0 just before the step, got %v", got)
	}
}

func TestContain(t *testing.T) {
	tests := []struct {
		name                     string
		imgW, imgH, surfW, surfH float64
		want                     Rect
	}{
		{"wide into square", 1920, 1080, 800, 800, Rect{X: 0, Y: 175, W: 800, H: 450}},
		{"tall into wide", 1080, 1920, 1600, 900, Rect{X: 546.875, Y: 0, W: 506.25, H: 900}},
		{"same aspect", 1920, 1080, 1280, 720, Rect{X: 0, Y: 0, W: 1280, H: 720}},
		{"zero surface", 1920, 1080, 0, 720, Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Contain(tt.imgW, tt.imgH, tt.surfW, tt.surfH)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.W, tt.want.W) || !near(got.H, tt.want.H) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
