package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// RasterSurface draws into an RGBA image. Strokes are filled as polygons by
// golang.org/x/image/vector with the paint sampled at every pixel centre, so
// conic gradients are exact.
type RasterSurface struct {
	base
	img *image.RGBA
	ctx *rasterContext
}

// NewRasterSurface returns a transparent surface.
func NewRasterSurface(id string, width, height int) *RasterSurface {
	s := &RasterSurface{base: newBase(id, width, height)}
	s.img = image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	s.ctx = &rasterContext{s: s}
	s.ctx.reset()
	return s
}

// Kind implements Surface.
func (s *RasterSurface) Kind() Kind { return KindPNG }

// Resize replaces the pixel buffer and resets the drawing state, even when
// the size does not change.
func (s *RasterSurface) Resize(width, height int) {
	s.w, s.h = max(width, 0), max(height, 0)
	s.img = image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	s.ctx.reset()
}

// Context2D implements render.Surface. The context stays valid across
// resizes.
func (s *RasterSurface) Context2D() (render.Context2D, error) {
	return s.ctx, nil
}

// Image returns the backing image.
func (s *RasterSurface) Image() *image.RGBA { return s.img }

// Encode writes the surface as PNG.
func (s *RasterSurface) Encode(w io.Writer) error {
	return png.Encode(w, s.img)
}

type rasterContext struct {
	s         *RasterSurface
	path      render.Path
	lineWidth float64
	paint     render.Paint
	fill      render.Paint
}

func (c *rasterContext) reset() {
	c.path.Reset()
	c.lineWidth = 1
	c.paint = render.Solid(color.RGBA{A: 0xff})
	c.fill = render.Solid(color.RGBA{A: 0xff})
}

func (c *rasterContext) BeginPath()          { c.path.Reset() }
func (c *rasterContext) MoveTo(x, y float64) { c.path.MoveTo(x, y) }
func (c *rasterContext) LineTo(x, y float64) { c.path.LineTo(x, y) }

func (c *rasterContext) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	c.path.Arc(x, y, radius, startAngle, endAngle, anticlockwise)
}

func (c *rasterContext) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
		c.lineWidth = w
	}
}

func (c *rasterContext) SetStrokeStyle(p render.Paint) {
	if p != nil {
		c.paint = p
	}
}

func (c *rasterContext) CreateConicGradient(startAngle, x, y float64, anticlockwise bool) *render.ConicGradient {
	return render.NewConicGradient(startAngle, x, y, anticlockwise)
}

// Stroke fills the outline of every subpath with butt ends and round joins.
// Single-point subpaths draw nothing.
func (c *rasterContext) Stroke() {
	b := c.s.img.Bounds()
	if b.Empty() {
		return
	}
	hw := c.lineWidth / 2

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	drawn := false
	for _, sub := range c.path.Subpaths() {
		pts := dedupe(sub)
		if len(pts) < 2 {
			continue
		}
		for _, q := range segmentQuads(pts, hw) {
			addPolygon(z, q[:])
		}
		for _, p := range pts[1 : len(pts)-1] {
			addPolygon(z, joinDisc(p, hw))
		}
		drawn = true
	}
	if !drawn {
		return
	}
	z.Draw(c.s.img, b, paintImage{paint: c.paint, bounds: b}, b.Min)
}

func (c *rasterContext) SetFillStyle(p render.Paint) {
	if p != nil {
		c.fill = p
	}
}

func (c *rasterContext) Fill() {
	b := c.s.img.Bounds()
	if b.Empty() {
		return
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	drawn := false
	for _, sub := range c.path.Subpaths() {
		pts := dedupe(sub)
		if len(pts) < 3 {
			continue
		}
		addPolygon(z, pts)
		drawn = true
	}
	if drawn {
		z.Draw(c.s.img, b, paintImage{paint: c.fill, bounds: b}, b.Min)
	}
}

func (c *rasterContext) ClearRect(x, y, w, h float64) {
	r := pixelRect(x, y, w, h).Intersect(c.s.img.Bounds())
	xdraw.Draw(c.s.img, r, image.Transparent, image.Point{}, xdraw.Src)
}

// DrawImage composites img scaled into the destination rectangle.
func (c *rasterContext) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	r := pixelRect(x, y, w, h)
	src := img.Bounds()
	if r.Dx() == src.Dx() && r.Dy() == src.Dy() {
		xdraw.Draw(c.s.img, r, img, src.Min, xdraw.Over)
		return
	}
	xdraw.CatmullRom.Scale(c.s.img, r, img, src, xdraw.Over, nil)
}

func addPolygon(z *vector.Rasterizer, pts []render.Point) {
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

// pixelRect snaps a possibly negative-sized rectangle outwards to pixels.
func pixelRect(x, y, w, h float64) image.Rectangle {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
}

// paintImage exposes a Paint as an image so the rasterizer can use it as
// its source.
type paintImage struct {
	paint  render.Paint
	bounds image.Rectangle
}

func (p paintImage) ColorModel() color.Model { return color.NRGBAModel }

func (p paintImage) Bounds() image.Rectangle { return p.bounds }

func (p paintImage) At(x, y int) color.Color {
	c := p.paint.ColorAt(float64(x)+0.5, float64(y)+0.5)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
