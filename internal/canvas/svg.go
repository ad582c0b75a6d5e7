package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// SVGSurface records drawing operations as SVG elements.
//
// Solid strokes become one <path> per subpath. Any other paint is emitted as
// one polygon per segment, filled with the paint's colour at the segment
// midpoint; arcs are flattened into short chords so a conic gradient comes
// out as a smooth sweep.
type SVGSurface struct {
	base

	// ClearColor paints rectangles cleared by ClearRect unless they cover
	// the whole surface, since SVG has no way to erase.
	ClearColor string

	elems []string
	ctx   *svgContext
}

// NewSVGSurface returns an empty vector surface.
func NewSVGSurface(id string, width, height int) *SVGSurface {
	s := &SVGSurface{base: newBase(id, width, height), ClearColor: "#ffffff"}
	s.ctx = &svgContext{s: s}
	s.ctx.reset()
	return s
}

// Kind implements Surface.
func (s *SVGSurface) Kind() Kind { return KindSVG }

// Resize drops all recorded elements and resets the drawing state.
func (s *SVGSurface) Resize(width, height int) {
	s.w, s.h = max(width, 0), max(height, 0)
	s.elems = nil
	s.ctx.reset()
}

// Context2D implements render.Surface.
func (s *SVGSurface) Context2D() (render.Context2D, error) {
	return s.ctx, nil
}

// Len returns the number of recorded elements.
func (s *SVGSurface) Len() int { return len(s.elems) }

// Markup returns the complete SVG document.
func (s *SVGSurface) Markup() string {
	var sb strings.Builder
	sb.WriteString(svgHeader(s.id, s.w, s.h))
	for _, e := range s.elems {
		sb.WriteString(e)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// Encode writes the SVG document.
func (s *SVGSurface) Encode(w io.Writer) error {
	_, err := io.WriteString(w, s.Markup())
	return err
}

type svgContext struct {
	s         *SVGSurface
	path      render.Path
	lineWidth float64
	paint     render.Paint
	fill      render.Paint
}

func (c *svgContext) reset() {
	c.path.Reset()
	c.lineWidth = 1
	c.paint = render.Solid(color.RGBA{A: 0xff})
	c.fill = render.Solid(color.RGBA{A: 0xff})
}

func (c *svgContext) BeginPath()          { c.path.Reset() }
func (c *svgContext) MoveTo(x, y float64) { c.path.MoveTo(x, y) }
func (c *svgContext) LineTo(x, y float64) { c.path.LineTo(x, y) }

func (c *svgContext) Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool) {
	c.path.Arc(x, y, radius, startAngle, endAngle, anticlockwise)
}

func (c *svgContext) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
		c.lineWidth = w
	}
}

func (c *svgContext) SetStrokeStyle(p render.Paint) {
	if p != nil {
		c.paint = p
	}
}

func (c *svgContext) CreateConicGradient(startAngle, x, y float64, anticlockwise bool) *render.ConicGradient {
	return render.NewConicGradient(startAngle, x, y, anticlockwise)
}

func (c *svgContext) Stroke() {
	solid, isSolid := c.paint.(render.Solid)
	for _, sub := range c.path.Subpaths() {
		pts := dedupe(sub)
		if len(pts) < 2 {
			continue
		}
		if isSolid {
			c.s.elems = append(c.s.elems, fmt.Sprintf(`<path d="%s" fill="none" %s stroke-width="%s" stroke-linejoin="round"/>`,
				pathData(pts), paintAttr("stroke", color.RGBA(solid)), num(c.lineWidth)))
			continue
		}
		for i, q := range miteredQuads(pts, c.lineWidth/2) {
			mid := midpoint(pts[i], pts[i+1])
			fill := paintAttr("fill", c.paint.ColorAt(mid.X, mid.Y))
			c.s.elems = append(c.s.elems, fmt.Sprintf(`<polygon points="%s" %s/>`, points(q[:]), fill))
		}
	}
}

func (c *svgContext) SetFillStyle(p render.Paint) {
	if p != nil {
		c.fill = p
	}
}

// Fill emits one closed path per subpath. Non-solid paints are sampled at
// the subpath's first vertex.
func (c *svgContext) Fill() {
	for _, sub := range c.path.Subpaths() {
		pts := dedupe(sub)
		if len(pts) < 3 {
			continue
		}
		col := c.fill.ColorAt(pts[0].X, pts[0].Y)
		c.s.elems = append(c.s.elems, fmt.Sprintf(`<path d="%s Z" %s stroke="none"/>`, pathData(pts), paintAttr("fill", col)))
	}
}

func (c *svgContext) ClearRect(x, y, w, h float64) {
	r := pixelRect(x, y, w, h)
	if r.Min.X <= 0 && r.Min.Y <= 0 && r.Max.X >= c.s.w && r.Max.Y >= c.s.h {
		c.s.elems = nil
		return
	}
	c.s.elems = append(c.s.elems, fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
		num(x), num(y), num(math.Abs(w)), num(math.Abs(h)), escapeXML(c.s.ClearColor)))
}

// DrawImage embeds img as a PNG data URI.
func (c *svgContext) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	c.s.elems = append(c.s.elems, fmt.Sprintf(`<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" href="data:image/png;base64,%s"/>`,
		num(x), num(y), num(w), num(h), base64.StdEncoding.EncodeToString(buf.Bytes())))
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(id string, w, h int) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" id="%s" width="%d" height="%d" viewBox="0 0 %d %d">`,
		escapeXML(id), w, h, w, h)
}

func pathData(pts []render.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		sb.WriteString(num(p.X))
		sb.WriteString(",")
		sb.WriteString(num(p.Y))
	}
	return sb.String()
}

func points(pts []render.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// paintAttr renders a colour as an SVG fill or stroke attribute. SVG 1.1
// has no alpha in colour values, so translucency goes to *-opacity.
func paintAttr(attr string, c color.RGBA) string {
	opaque := render.Hex(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	if c.A == 0xff {
		return fmt.Sprintf(`%s="%s"`, attr, opaque)
	}
	return fmt.Sprintf(`%s="%s" %s-opacity="%s"`, attr, opaque, attr, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}

// num formats a coordinate with two decimals and no trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
