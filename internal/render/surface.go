// Package render draws the player profile dashboard: two percentage gauges
// and a dual-series rating chart. Renderers talk to drawing surfaces through
// the Surface, Context2D and ChartingBackend interfaces; concrete surfaces live
// in package canvas and concrete chart backends in package charts.
package render

import (
	"errors"
	"image"
)

var (
	// ErrSurfaceNotFound is returned when an identifier does not name a surface.
	ErrSurfaceNotFound = errors.New("surface not found")

	// ErrNoProfileData is returned when a render pass is started without data.
	ErrNoProfileData = errors.New("no profile data")
)

// SurfaceProvider resolves surface identifiers to drawable surfaces.
type SurfaceProvider interface {
	Resolve(id string) (Surface, error)
}

// SurfaceProviderFunc adapts a function to SurfaceProvider.
type SurfaceProviderFunc func(id string) (Surface, error)

// Resolve calls f(id).
func (f SurfaceProviderFunc) Resolve(id string) (Surface, error) { return f(id) }

// Surface is a drawable 2D pixel region.
type Surface interface {
	ID() string

	// Size returns the pixel dimensions of the drawing buffer.
	Size() (width, height int)

	// ClientSize returns the displayed (layout) dimensions.
	ClientSize() (width, height int)

	// Resize resets the drawing buffer. Existing content is discarded.
	Resize(width, height int)

	Context2D() (Context2D, error)
}

// Context2D is an immediate-mode drawing context with HTML canvas semantics:
// angles are in radians measured from the positive x axis, and with y
// pointing down a growing angle turns clockwise on screen.
type Context2D interface {
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool)
	SetLineWidth(width float64)
	SetStrokeStyle(p Paint)
	Stroke()
	SetFillStyle(p Paint)

	// Fill paints the area enclosed by every subpath, each implicitly
	// closed, with the non-zero rule.
	Fill()

	ClearRect(x, y, width, height float64)
	DrawImage(img image.Image, x, y, width, height float64)
	CreateConicGradient(startAngle, x, y float64, anticlockwise bool) *ConicGradient
}
