package overlay

import "github.com/ivlev/apexscroll/internal/renderer"

// DefaultPhases is the APEX hero schedule. Adjacent opacity windows overlap
// (services fades out over 0.58-0.66 while performance fades in over
// 0.60-0.70) so phases blend instead of cutting.
func DefaultPhases() []Phase {
	return []Phase{
		{
			ID:      Intro,
			Opacity: renderer.NewCurve([]float64{0, 0.25, 0.33}, []float64{1, 1, 0}),
			Offset:  renderer.NewCurve([]float64{0, 0.33}, []float64{0, -50}),
			Axis:    AxisY,
			Kicker:  "PREMIUM AUTOMOTIVE CARE",
			Title:   "APEX",
			Lines: []string{
				"AUTO DETAILING & CUSTOM BUILDS",
				"WHERE PRECISION MEETS PERFORMANCE",
			},
		},
		{
			ID:      Services,
			Opacity: renderer.NewCurve([]float64{0.28, 0.35, 0.58, 0.66}, []float64{0, 1, 1, 0}),
			Offset:  renderer.NewCurve([]float64{0.28, 0.35}, []float64{50, 0}),
			Axis:    AxisY,
			Kicker:  "WHAT WE OFFER",
			Title:   "SERVICES",
			Lines: []string{
				"PAINT PROTECTION FILM",
				"CERAMIC COATING",
				"INTERIOR DETAILING",
				"CUSTOM BODY KITS",
				"WHEEL & BRAKE UPGRADES",
			},
		},
		{
			ID:      Performance,
			Opacity: renderer.NewCurve([]float64{0.60, 0.70, 0.95, 1}, []float64{0, 1, 1, 0.8}),
			Offset:  renderer.NewCurve([]float64{0.60, 0.70}, []float64{100, 0}),
			Axis:    AxisX,
			Kicker:  "ENGINEERED POWER",
			Title:   "PERFORMANCE",
			Lines: []string{
				"ECU TUNING  +40% POWER",
				"EXHAUST  FULL SYSTEMS",
				"SUSPENSION  TRACK READY",
				"FORCED INDUCTION  TURBO/SC",
			},
		},
	}
}

// DefaultIndicator fades the scroll hint out over the first tenth
func DefaultIndicator() renderer.Curve {
	return renderer.NewCurve([]float64{0, 0.1}, []float64{1, 0})
}
