package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Paint yields the colour of a stroke at a point in surface coordinates.
type Paint interface {
	ColorAt(x, y float64) color.RGBA
}

// Solid is a single-colour paint.
type Solid color.RGBA

// ColorAt implements Paint.
func (s Solid) ColorAt(_, _ float64) color.RGBA {
	return color.RGBA(s)
}

// ParseHex parses "#rrggbb", "#rgb" or "#rrggbbaa".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustParseHex is ParseHex for package-level constants.
func MustParseHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats an opaque colour as "#rrggbb" and a translucent one as "#rrggbbaa".
func Hex(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ColorStop is a gradient colour at an offset in [0, 1].
type ColorStop struct {
	Offset float64
	Color  color.RGBA
}

// ConicGradient varies colour by angle around a centre point. Offset 0 sits
// at StartAngle and offsets grow clockwise, or anticlockwise when
// Anticlockwise is set, reaching 1 after a full turn.
type ConicGradient struct {
	StartAngle    float64
	X, Y          float64
	Anticlockwise bool
	Stops         []ColorStop
}

// NewConicGradient returns a gradient without stops.
func NewConicGradient(startAngle, x, y float64, anticlockwise bool) *ConicGradient {
	return &ConicGradient{StartAngle: startAngle, X: x, Y: y, Anticlockwise: anticlockwise}
}

// AddColorStop inserts a stop, keeping stops ordered by offset. Offsets are
// clamped to [0, 1]; NaN offsets are ignored.
func (g *ConicGradient) AddColorStop(offset float64, c color.RGBA) {
	if math.IsNaN(offset) {
		return
	}
	offset = math.Max(0, math.Min(1, offset))
	i := sort.Search(len(g.Stops), func(i int) bool { return g.Stops[i].Offset > offset })
	g.Stops = append(g.Stops, ColorStop{})
	copy(g.Stops[i+1:], g.Stops[i:])
	g.Stops[i] = ColorStop{Offset: offset, Color: c}
}

// Offset returns the gradient position of a point, in [0, 1).
func (g *ConicGradient) Offset(x, y float64) float64 {
	theta := math.Atan2(y-g.Y, x-g.X)
	d := theta - g.StartAngle
	if g.Anticlockwise {
		d = -d
	}
	d = math.Mod(d, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d / (2 * math.Pi)
}

// ColorAt implements Paint.
func (g *ConicGradient) ColorAt(x, y float64) color.RGBA {
	return g.colorAtOffset(g.Offset(x, y))
}

func (g *ConicGradient) colorAtOffset(t float64) color.RGBA {
	n := len(g.Stops)
	switch {
	case n == 0:
		return color.RGBA{}
	case t <= g.Stops[0].Offset:
		return g.Stops[0].Color
	case t >= g.Stops[n-1].Offset:
		return g.Stops[n-1].Color
	}
	for i := 1; i < n; i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		return lerpRGBA(a.Color, b.Color, (t-a.Offset)/span)
	}
	return g.Stops[n-1].Color
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
