package render

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

// ════════════════════════════════════════════════════════════════════
// Geometry
// ════════════════════════════════════════════════════════════════════

func TestGaugeGeometryFor(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		pct        float64
		wantRadius float64
		wantSweep  float64
	}{
		{"empty", 200, 200, 0, 80, 0},
		{"three quarters", 200, 200, 75, 80, 3 * math.Pi / 2},
		{"forty percent", 200, 200, 40, 80, 144 * math.Pi / 180},
		{"full", 200, 200, 100, 80, 2 * math.Pi},
		{"wide surface uses height", 300, 100, 50, 40, math.Pi},
		{"tall surface uses width", 100, 300, 50, 40, math.Pi},
		{"over range is not clamped", 200, 200, 150, 80, 3 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GaugeGeometryFor(tt.w, tt.h, tt.pct)
			if !approx(g.CenterX, float64(tt.w)/2) || !approx(g.CenterY, float64(tt.h)/2) {
				t.Errorf("center: got (%v, %v)", g.CenterX, g.CenterY)
			}
			if !approx(g.Radius, tt.wantRadius) {
				t.Errorf("Radius: got %v, want %v", g.Radius, tt.wantRadius)
			}
			if !approx(g.Sweep, tt.wantSweep) {
				t.Errorf("Sweep: got %v, want %v", g.Sweep, tt.wantSweep)
			}
			if !approx(g.StartAngle, -math.Pi/2) {
				t.Errorf("StartAngle: got %v, want -π/2", g.StartAngle)
			}
			if !approx(g.StartAngle-g.EndAngle, g.Sweep) {
				t.Errorf("start-end: got %v, want %v", g.StartAngle-g.EndAngle, g.Sweep)
			}
			if !g.Anticlockwise {
				t.Error("Anticlockwise should be set")
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Rendering
// ════════════════════════════════════════════════════════════════════

func TestGaugeRenderIssuesArcAndGradient(t *testing.T) {
	s := newFakeSurface("g", 200, 100)
	r := NewGaugeRenderer(newFakeProvider(s))

	if err := r.Render("g", 75, VariantMatch); err != nil {
		t.Fatalf("Render: %v", err)
	}

	ctx := s.ctx
	if len(ctx.arcs) != 1 {
		t.Fatalf("arcs: got %d, want 1", len(ctx.arcs))
	}
	arc := ctx.arcs[0]
	if !approx(arc.x, 100) || !approx(arc.y, 50) || !approx(arc.r, 40) {
		t.Errorf("arc centre/radius: got (%v, %v, %v)", arc.x, arc.y, arc.r)
	}
	if !approx(arc.start, -math.Pi/2) || !approx(arc.end, -2*math.Pi*0.75-math.Pi/2) {
		t.Errorf("arc angles: got (%v, %v)", arc.start, arc.end)
	}
	if !arc.anticlockwise {
		t.Error("arc should be drawn with the anticlockwise flag")
	}

	if len(ctx.strokes) != 1 {
		t.Fatalf("strokes: got %d, want 1", len(ctx.strokes))
	}
	st := ctx.strokes[0]
	if st.width != GaugeLineWidth {
		t.Errorf("line width: got %v, want %v", st.width, GaugeLineWidth)
	}
	grd, ok := st.paint.(*ConicGradient)
	if !ok {
		t.Fatalf("stroke paint: got %T, want *ConicGradient", st.paint)
	}
	if grd.X != 100 || grd.Y != 50 || grd.StartAngle != 0 || !grd.Anticlockwise {
		t.Errorf("gradient: got %+v", grd)
	}
}

func TestGaugePalettes(t *testing.T) {
	tests := []struct {
		variant   Variant
		wantLight string
		wantDark  string
	}{
		{VariantMatch, "#cdeac0", "#8cb369"},
		{VariantPoints, "#dfe7fd", "#a0c4ff"},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			s := newFakeSurface("g", 100, 100)
			if err := NewGaugeRenderer(newFakeProvider(s)).Render("g", 50, tt.variant); err != nil {
				t.Fatalf("Render: %v", err)
			}
			grd := s.ctx.strokes[0].paint.(*ConicGradient)
			if len(grd.Stops) != 2 {
				t.Fatalf("stops: got %d, want 2", len(grd.Stops))
			}
			if grd.Stops[0].Offset != 0 || Hex(grd.Stops[0].Color) != tt.wantLight {
				t.Errorf("stop 0: got %v %s, want 0 %s", grd.Stops[0].Offset, Hex(grd.Stops[0].Color), tt.wantLight)
			}
			if grd.Stops[1].Offset != 1 || Hex(grd.Stops[1].Color) != tt.wantDark {
				t.Errorf("stop 1: got %v %s, want 1 %s", grd.Stops[1].Offset, Hex(grd.Stops[1].Color), tt.wantDark)
			}
		})
	}
}

func TestGaugeDrawnSweep(t *testing.T) {
	tests := []struct {
		name      string
		pct       float64
		wantSweep float64
	}{
		{"zero draws nothing", 0, 0},
		{"full closes the ring", 100, -2 * math.Pi},
		{"over range closes the ring", 130, -2 * math.Pi},
		{"negative under-sweeps", -10, -1.8 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSurface("g", 100, 100)
			if err := NewGaugeRenderer(newFakeProvider(s)).Render("g", tt.pct, VariantPoints); err != nil {
				t.Fatalf("Render: %v", err)
			}
			a := s.ctx.arcs[0]
			got := ArcSweep(a.start, a.end, a.anticlockwise)
			if math.Abs(got-tt.wantSweep) > 1e-6 {
				t.Errorf("drawn sweep: got %v, want %v", got, tt.wantSweep)
			}
		})
	}
}

func TestGaugeZeroPercentStrokesSinglePoint(t *testing.T) {
	s := newFakeSurface("g", 100, 100)
	if err := NewGaugeRenderer(newFakeProvider(s)).Render("g", 0, VariantMatch); err != nil {
		t.Fatalf("Render: %v", err)
	}
	sub := s.ctx.strokes[0].subpaths
	if len(sub) != 1 || len(sub[0]) != 1 {
		t.Errorf("subpaths: got %v, want one single-point subpath", sub)
	}
}

func TestGaugeFullRingEndsWhereItStarts(t *testing.T) {
	s := newFakeSurface("g", 100, 100)
	if err := NewGaugeRenderer(newFakeProvider(s)).Render("g", 100, VariantMatch); err != nil {
		t.Fatalf("Render: %v", err)
	}
	pts := s.ctx.strokes[0].subpaths[0]
	first, last := pts[0], pts[len(pts)-1]
	if math.Hypot(first.X-last.X, first.Y-last.Y) > 1e-6 {
		t.Errorf("ring not closed: first %v, last %v", first, last)
	}
	if math.Abs(first.X-50) > 1e-9 || math.Abs(first.Y-10) > 1e-9 {
		t.Errorf("ring should start at 12 o'clock, got %v", first)
	}
}

func TestGaugeErrors(t *testing.T) {
	t.Run("missing surface", func(t *testing.T) {
		err := NewGaugeRenderer(newFakeProvider()).Render("nope", 10, VariantMatch)
		if !errors.Is(err, ErrSurfaceNotFound) {
			t.Errorf("got %v, want ErrSurfaceNotFound", err)
		}
	})

	t.Run("context unavailable", func(t *testing.T) {
		s := newFakeSurface("g", 10, 10)
		s.ctxErr = errors.New("no 2d context")
		err := NewGaugeRenderer(newFakeProvider(s)).Render("g", 10, VariantMatch)
		if err == nil || !errors.Is(err, s.ctxErr) {
			t.Errorf("got %v, want wrapped context error", err)
		}
	})
}

func TestVariantString(t *testing.T) {
	if VariantMatch.String() != "match" || VariantPoints.String() != "points" {
		t.Errorf("got %q / %q", VariantMatch, VariantPoints)
	}
	if Variant(7).Palette() != PointsPalette {
		t.Error("unknown variants should use the points palette")
	}
	if (MatchPalette.Dark != color.RGBA{R: 0x8c, G: 0xb3, B: 0x69, A: 0xff}) {
		t.Errorf("MatchPalette.Dark: got %v", MatchPalette.Dark)
	}
}
