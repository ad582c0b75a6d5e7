package render

import (
	"fmt"
	"image/color"
	"math"
)

// GaugeLineWidth is the stroke width of a gauge ring.
const GaugeLineWidth = 25

// gaugeRadiusRatio scales the radius against the smaller half-dimension.
const gaugeRadiusRatio = 0.8

// Variant selects a gauge palette.
type Variant int

const (
	VariantMatch Variant = iota
	VariantPoints
)

func (v Variant) String() string {
	switch v {
	case VariantMatch:
		return "match"
	case VariantPoints:
		return "points"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Palette is a light-to-dark colour pair.
type Palette struct {
	Light color.RGBA
	Dark  color.RGBA
}

var (
	// MatchPalette is light to dark green.
	MatchPalette = Palette{Light: MustParseHex("#cdeac0"), Dark: MustParseHex("#8cb369")}

	// PointsPalette is light to dark blue.
	PointsPalette = Palette{Light: MustParseHex("#dfe7fd"), Dark: MustParseHex("#a0c4ff")}
)

// Palette returns the variant's colours. Anything but VariantMatch is blue.
func (v Variant) Palette() Palette {
	if v == VariantMatch {
		return MatchPalette
	}
	return PointsPalette
}

// GaugeGeometry describes the arc a gauge strokes.
type GaugeGeometry struct {
	CenterX, CenterY float64
	Radius           float64
	StartAngle       float64 // 12 o'clock
	EndAngle         float64
	Anticlockwise    bool
	Sweep            float64 // nominal sweep magnitude, percentage/100 of a turn
}

// GaugeGeometryFor computes the arc for a surface size. The percentage is
// neither validated nor clamped.
func GaugeGeometryFor(width, height int, percentage float64) GaugeGeometry {
	cx := float64(width) / 2
	cy := float64(height) / 2
	return GaugeGeometry{
		CenterX:       cx,
		CenterY:       cy,
		Radius:        math.Min(cx, cy) * gaugeRadiusRatio,
		StartAngle:    -math.Pi / 2,
		EndAngle:      -2*math.Pi*(percentage/100) - math.Pi/2,
		Anticlockwise: true,
		Sweep:         2 * math.Pi * percentage / 100,
	}
}

// GaugeRenderer draws percentage rings.
type GaugeRenderer struct {
	surfaces SurfaceProvider
}

// NewGaugeRenderer returns a renderer resolving surfaces through p.
func NewGaugeRenderer(p SurfaceProvider) *GaugeRenderer {
	return &GaugeRenderer{surfaces: p}
}

// Render strokes a ring segment covering percentage/100 of a turn from
// 12 o'clock, painted with the variant's conic gradient.
func (g *GaugeRenderer) Render(surfaceID string, percentage float64, variant Variant) error {
	s, err := g.surfaces.Resolve(surfaceID)
	if err != nil {
		return err
	}
	ctx, err := s.Context2D()
	if err != nil {
		return fmt.Errorf("surface %s: %w", surfaceID, err)
	}

	w, h := s.Size()
	geo := GaugeGeometryFor(w, h, percentage)

	ctx.BeginPath()
	ctx.Arc(geo.CenterX, geo.CenterY, geo.Radius, geo.StartAngle, geo.EndAngle, geo.Anticlockwise)
	ctx.SetLineWidth(GaugeLineWidth)

	pal := variant.Palette()
	grd := ctx.CreateConicGradient(0, geo.CenterX, geo.CenterY, true)
	grd.AddColorStop(0, pal.Light)
	grd.AddColorStop(1, pal.Dark)
	ctx.SetStrokeStyle(grd)
	ctx.Stroke()
	return nil
}
