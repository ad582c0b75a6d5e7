package render

import (
	"fmt"
	"image"
)

// ════════════════════════════════════════════════════════════════════
// Test doubles: a recording context, surfaces and a charting backend
// ════════════════════════════════════════════════════════════════════

type arcCall struct {
	x, y, r, start, end float64
	anticlockwise       bool
}

type strokeCall struct {
	width    float64
	paint    Paint
	subpaths [][]Point
}

type fakeContext struct {
	path      Path
	lineWidth float64
	paint     Paint
	arcs      []arcCall
	strokes   []strokeCall
	fills     int
	clears    int
}

func (c *fakeContext) BeginPath() { c.path.Reset() }
func (c *fakeContext) MoveTo(x, y float64) { c.path.MoveTo(x, y) }
func (c *fakeContext) LineTo(x, y float64) { c.path.LineTo(x, y) }

func (c *fakeContext) Arc(x, y, r, start, end float64, anticlockwise bool) {
	c.arcs = append(c.arcs, arcCall{x, y, r, start, end, anticlockwise})
	c.path.Arc(x, y, r, start, end, anticlockwise)
}

func (c *fakeContext) SetLineWidth(w float64) { c.lineWidth = w }
func (c *fakeContext) SetStrokeStyle(p Paint) { c.paint = p }

func (c *fakeContext) Stroke() {
	var sub [][]Point
	for _, s := range c.path.Subpaths() {
		sub = append(sub, append([]Point(nil), s...))
	}
	c.strokes = append(c.strokes, strokeCall{width: c.lineWidth, paint: c.paint, subpaths: sub})
}

func (c *fakeContext) SetFillStyle(Paint) {}
func (c *fakeContext) Fill() { c.fills++ }

func (c *fakeContext) ClearRect(_, _, _, _ float64) { c.clears++ }
func (c *fakeContext) DrawImage(_ image.Image, _, _, _, _ float64) {}

func (c *fakeContext) CreateConicGradient(start, x, y float64, anticlockwise bool) *ConicGradient {
	return NewConicGradient(start, x, y, anticlockwise)
}

type fakeSurface struct {
	id            string
	w, h          int
	clientW       int
	clientH       int
	ctx           *fakeContext
	ctxErr        error
	contextCalls  int
	resizeHistory [][2]int
}

func newFakeSurface(id string, w, h int) *fakeSurface {
	return &fakeSurface{id: id, w: w, h: h, clientW: w, clientH: h, ctx: &fakeContext{}}
}

func (s *fakeSurface) ID() string { return s.id }
func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) ClientSize() (int, int) { return s.clientW, s.clientH }
func (s *fakeSurface) Resize(w, h int) {
	s.w, s.h = w, h
	s.resizeHistory = append(s.resizeHistory, [2]int{w, h})
}

func (s *fakeSurface) Context2D() (Context2D, error) {
	s.contextCalls++
	if s.ctxErr != nil {
		return nil, s.ctxErr
	}
	return s.ctx, nil
}

type fakeProvider struct {
	surfaces map[string]*fakeSurface
	resolved []string
}

func newFakeProvider(surfaces ...*fakeSurface) *fakeProvider {
	p := &fakeProvider{surfaces: make(map[string]*fakeSurface)}
	for _, s := range surfaces {
		p.surfaces[s.id] = s
	}
	return p
}

func (p *fakeProvider) Resolve(id string) (Surface, error) {
	p.resolved = append(p.resolved, id)
	s, ok := p.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, id)
	}
	return s, nil
}

type fakeChart struct {
	surface   Surface
	cfg       ChartConfig
	destroyed bool
}

func (c *fakeChart) Config() ChartConfig { return c.cfg }

func (c *fakeChart) Destroy() error {
	c.destroyed = true
	return nil
}

type fakeBackend struct {
	charts []*fakeChart
	err    error
}

func (b *fakeBackend) NewChart(s Surface, cfg ChartConfig) (Chart, error) {
	if b.err != nil {
		return nil, b.err
	}
	c := &fakeChart{surface: s, cfg: cfg}
	b.charts = append(b.charts, c)
	return c, nil
}
