package canvas

import (
	"math"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// Miter joins longer than this many half widths fall back to plain segment
// ends.
const miterLimit = 4.0

// quad is one stroked segment: left start, left end, right end, right start.
type quad [4]render.Point

// dedupe drops consecutive coincident points.
func dedupe(pts []render.Point) []render.Point {
	out := make([]render.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && math.Abs(out[n-1].X-p.X) < 1e-9 && math.Abs(out[n-1].Y-p.Y) < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// normal returns the unit left normal of the segment a→b.
func normal(a, b render.Point) render.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	return render.Point{X: -dy / l, Y: dx / l}
}

func offset(p, n render.Point, d float64) render.Point {
	return render.Point{X: p.X + n.X*d, Y: p.Y + n.Y*d}
}

// segmentQuads outlines every segment of a deduplicated polyline with butt
// ends. The quads all wind the same way, so overlaps never cancel out under
// a non-zero fill.
func segmentQuads(pts []render.Point, hw float64) []quad {
	out := make([]quad, 0, len(pts))
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		n := normal(a, b)
		out = append(out, quad{offset(a, n, hw), offset(b, n, hw), offset(b, n, -hw), offset(a, n, -hw)})
	}
	return out
}

// miteredQuads outlines a polyline so that neighbouring quads share their
// edges at interior vertices. Joins sharper than miterLimit keep the
// segment's own normal.
func miteredQuads(pts []render.Point, hw float64) []quad {
	n := len(pts)
	if n < 2 {
		return nil
	}
	seg := make([]render.Point, n-1)
	for i := range seg {
		seg[i] = normal(pts[i], pts[i+1])
	}

	// vertex offset for segment s at vertex v
	vertex := func(v, s int) (render.Point, float64) {
		if v == 0 || v == n-1 {
			return seg[s], hw
		}
		a, b := seg[v-1], seg[v]
		m := render.Point{X: a.X + b.X, Y: a.Y + b.Y}
		l := math.Hypot(m.X, m.Y)
		if l < 1e-9 {
			return seg[s], hw
		}
		m = render.Point{X: m.X / l, Y: m.Y / l}
		cos := m.X*seg[s].X + m.Y*seg[s].Y
		if cos <= 0 || 1/cos > miterLimit {
			return seg[s], hw
		}
		return m, hw / cos
	}

	out := make([]quad, 0, n-1)
	for s := 0; s < n-1; s++ {
		na, da := vertex(s, s)
		nb, db := vertex(s+1, s)
		a, b := pts[s], pts[s+1]
		out = append(out, quad{offset(a, na, da), offset(b, nb, db), offset(b, nb, -db), offset(a, na, -da)})
	}
	return out
}

// joinDisc approximates a round join as a polygon wound like segmentQuads.
func joinDisc(c render.Point, r float64) []render.Point {
	n := int(math.Ceil(2 * math.Pi * r / 2))
	n = max(8, min(n, 256))
	out := make([]render.Point, n)
	for i := range out {
		a := -2 * math.Pi * float64(i) / float64(n)
		out[i] = render.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return out
}

func midpoint(a, b render.Point) render.Point {
	return render.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
