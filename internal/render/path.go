package render

import "math"

const (
	fullTurn = 2 * math.Pi

	// Sweeps within this distance of a full turn close the circle.
	turnEpsilon = 1e-9

	// Arcs are flattened into chords of at most this many pixels.
	arcChord = 2.0

	maxArcSegments = 4096
)

// Point is a position in surface coordinates.
type Point struct {
	X, Y float64
}

// Path accumulates canvas-style subpaths as polylines. Surfaces share it so
// that MoveTo, LineTo and Arc behave identically everywhere.
type Path struct {
	subpaths [][]Point
}

// Reset discards every subpath.
func (p *Path) Reset() {
	p.subpaths = p.subpaths[:0]
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	p.subpaths = append(p.subpaths, []Point{{x, y}})
}

// LineTo extends the current subpath, or starts one when there is none.
func (p *Path) LineTo(x, y float64) {
	if len(p.subpaths) == 0 {
		p.MoveTo(x, y)
		return
	}
	last := len(p.subpaths) - 1
	p.subpaths[last] = append(p.subpaths[last], Point{x, y})
}

// Arc appends a circular arc. A straight line joins the current point to the
// arc's start, as on an HTML canvas.
func (p *Path) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	sweep := ArcSweep(startAngle, endAngle, anticlockwise)
	at := func(a float64) (float64, float64) {
		return x + radius*math.Cos(a), y + radius*math.Sin(a)
	}

	sx, sy := at(startAngle)
	p.LineTo(sx, sy)
	if sweep == 0 || radius <= 0 {
		return
	}

	n := int(math.Ceil(math.Abs(sweep) * radius / arcChord))
	n = max(1, min(n, maxArcSegments))
	for i := 1; i <= n; i++ {
		px, py := at(startAngle + sweep*float64(i)/float64(n))
		p.LineTo(px, py)
	}
}

// Subpaths returns the flattened subpaths. The slices must not be modified.
func (p *Path) Subpaths() [][]Point {
	return p.subpaths
}

// ArcSweep returns the signed angle an arc covers under canvas rules: a
// requested sweep of a full turn or more draws the whole circle, otherwise
// the angle difference is reduced into [0, 2π) in the drawing direction.
// Negative results turn anticlockwise.
func ArcSweep(startAngle, endAngle float64, anticlockwise bool) float64 {
	d := endAngle - startAngle
	if anticlockwise {
		d = -d
	}
	if d >= fullTurn-turnEpsilon {
		d = fullTurn
	} else {
		d = math.Mod(d, fullTurn)
		if d < 0 {
			d += fullTurn
		}
	}
	if anticlockwise {
		return -d
	}
	return d
}
