package charts

import (
	"math"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// ControlPoints returns the cubic bezier control points placed before and
// after cur, derived from its neighbours the way Chart.js does for a given
// line tension.
func ControlPoints(prev, cur, next render.Point, tension float64) (before, after render.Point) {
	d01 := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
	d12 := math.Hypot(next.X-cur.X, next.Y-cur.Y)

	s01 := d01 / (d01 + d12)
	s12 := d12 / (d01 + d12)
	if math.IsNaN(s01) {
		s01 = 0
	}
	if math.IsNaN(s12) {
		s12 = 0
	}

	fa := tension * s01
	fb := tension * s12
	dx, dy := next.X-prev.X, next.Y-prev.Y
	before = render.Point{X: cur.X - fa*dx, Y: cur.Y - fa*dy}
	after = render.Point{X: cur.X + fb*dx, Y: cur.Y + fb*dy}
	return before, after
}

// Smooth turns a polyline into a sampled piecewise cubic curve through the
// same points. With zero tension, or fewer than three points, the input is
// returned unchanged. Control points are capped to [minY, maxY] so curves
// never overshoot the plot area.
func Smooth(pts []render.Point, tension, minY, maxY float64) []render.Point {
	if tension == 0 || len(pts) < 3 {
		return pts
	}

	n := len(pts)
	before := make([]render.Point, n)
	after := make([]render.Point, n)
	for i := range pts {
		prev, next := pts[max(i-1, 0)], pts[min(i+1, n-1)]
		b, a := ControlPoints(prev, pts[i], next, tension)
		b.Y = capY(b.Y, minY, maxY)
		a.Y = capY(a.Y, minY, maxY)
		before[i], after[i] = b, a
	}

	out := []render.Point{pts[0]}
	for i := 0; i < n-1; i++ {
		p0, p3 := pts[i], pts[i+1]
		p1, p2 := after[i], before[i+1]
		steps := int(math.Ceil(math.Hypot(p3.X-p0.X, p3.Y-p0.Y) / 3))
		steps = max(2, min(steps, 32))
		for s := 1; s <= steps; s++ {
			out = append(out, bezier(p0, p1, p2, p3, float64(s)/float64(steps)))
		}
	}
	return out
}

func capY(y, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, y))
}

func bezier(p0, p1, p2, p3 render.Point, t float64) render.Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return render.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// smoothValues smooths index/value points for the image backends. The
// curve is computed in a pixel-like space of the given size, so tension
// behaves as it does on screen, and mapped back to data coordinates.
func smoothValues(pts []render.Point, tension float64, sc scale, w, h int) []render.Point {
	if tension == 0 || len(pts) < 3 || w <= 0 || h <= 0 {
		return pts
	}
	fx := float64(w) / sc.xMax()
	fy := float64(h) / (sc.hi - sc.lo)

	px := make([]render.Point, len(pts))
	for i, p := range pts {
		px[i] = render.Point{X: p.X * fx, Y: (p.Y - sc.lo) * fy}
	}
	sm := Smooth(px, tension, 0, float64(h))
	out := make([]render.Point, len(sm))
	for i, p := range sm {
		out[i] = render.Point{X: p.X / fx, Y: p.Y/fy + sc.lo}
	}
	return out
}
