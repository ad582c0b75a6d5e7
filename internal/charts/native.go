package charts

import (
	"math"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// NativeBackend draws charts through the surface's own 2D context, so the
// output is a raster or vector image depending on the surface.
type NativeBackend struct {
	GridLines int
}

// NewNative returns a native backend with five grid intervals.
func NewNative() *NativeBackend {
	return &NativeBackend{GridLines: 5}
}

// plotArea is the region inside axes, legend and padding.
type plotArea struct {
	left, top, width, height float64
}

func (a plotArea) right() float64  { return a.left + a.width }
func (a plotArea) bottom() float64 { return a.top + a.height }

func (a plotArea) x(i float64, sc scale) float64 {
	if sc.n <= 1 {
		return a.left + a.width/2
	}
	return a.left + i*a.width/float64(sc.n-1)
}

func (a plotArea) y(v float64, sc scale) float64 {
	return a.bottom() - (v-sc.lo)/(sc.hi-sc.lo)*a.height
}

// NewChart implements render.ChartingBackend.
func (b *NativeBackend) NewChart(s render.Surface, cfg render.ChartConfig) (render.Chart, error) {
	ctx, err := clearSurface(s)
	if err != nil {
		return nil, err
	}
	c := &chart{surface: s, cfg: cfg}

	sc, ok := valueScale(cfg.Data.Datasets)
	w, h := s.Size()
	if !ok || w == 0 || h == 0 {
		return c, nil
	}

	grid := max(b.GridLines, 1)
	ticks := sc.ticks(grid)
	a := b.layout(cfg, ticks, w, h)
	if a.width <= 0 || a.height <= 0 {
		return c, nil
	}

	if cfg.Options.Scales.Y.Display {
		b.drawYAxis(ctx, a, sc, ticks)
	}
	if cfg.Options.Scales.X.Display {
		b.drawXAxis(ctx, a, sc, cfg.Data.Labels)
	}
	for i, ds := range cfg.Data.Datasets {
		b.drawDataset(ctx, a, sc, ds, i, cfg.Options.Elements.Point.Radius)
	}
	if cfg.Options.Plugins.Legend.Display {
		b.drawLegend(ctx, cfg.Data.Datasets, float64(w))
	}
	return c, nil
}

func (b *NativeBackend) layout(cfg render.ChartConfig, ticks []float64, w, h int) plotArea {
	left, top := padding, padding
	right, bottom := float64(w)-padding, float64(h)-padding

	if cfg.Options.Scales.Y.Display {
		widest := 0
		for _, t := range ticks {
			widest = max(widest, textWidth(tickLabel(t)))
		}
		left += float64(widest) + padding
		// room for the half-height of the outermost labels
		half := float64(textHeight()) / 2
		top = math.Max(top, half)
		bottom = math.Min(bottom, float64(h)-half)
	}
	if cfg.Options.Scales.X.Display {
		bottom -= float64(textHeight()) + padding
	}
	if cfg.Options.Plugins.Legend.Display {
		top += float64(textHeight()) + padding
	}
	return plotArea{left: left, top: top, width: right - left, height: bottom - top}
}

func (b *NativeBackend) drawYAxis(ctx render.Context2D, a plotArea, sc scale, ticks []float64) {
	ctx.SetLineWidth(1)
	ctx.SetStrokeStyle(render.Solid(gridColor))
	for _, t := range ticks {
		y := math.Round(a.y(t, sc)) + 0.5
		ctx.BeginPath()
		ctx.MoveTo(a.left, y)
		ctx.LineTo(a.right(), y)
		ctx.Stroke()
		drawText(ctx, tickLabel(t), textColor, a.left-padding, y, alignRight)
	}
}

func (b *NativeBackend) drawXAxis(ctx render.Context2D, a plotArea, sc scale, labels []string) {
	ctx.SetLineWidth(1)
	ctx.SetStrokeStyle(render.Solid(gridColor))
	ctx.BeginPath()
	ctx.MoveTo(a.left, a.bottom())
	ctx.LineTo(a.right(), a.bottom())
	ctx.Stroke()

	if len(labels) == 0 {
		return
	}
	interval := max(sc.n/6, 1)
	y := a.bottom() + padding + float64(textHeight())/2
	for i := 0; i < len(labels) && i < sc.n; i += interval {
		drawText(ctx, labels[i], textColor, a.x(float64(i), sc), y, alignCenter)
	}
}

func (b *NativeBackend) drawDataset(ctx render.Context2D, a plotArea, sc scale, ds render.Dataset, i int, radius float64) {
	col := datasetColor(ds, i)
	for _, run := range runs(ds.Data) {
		pts := make([]render.Point, len(run))
		for j, p := range run {
			pts[j] = render.Point{X: a.x(p.X, sc), Y: a.y(p.Y, sc)}
		}
		curve := Smooth(pts, ds.LineTension, a.top, a.bottom())

		if ds.Fill && len(curve) > 1 {
			ctx.BeginPath()
			ctx.MoveTo(curve[0].X, a.bottom())
			for _, p := range curve {
				ctx.LineTo(p.X, p.Y)
			}
			ctx.LineTo(curve[len(curve)-1].X, a.bottom())
			ctx.SetFillStyle(render.Solid(fillColor(col)))
			ctx.Fill()
		}

		ctx.BeginPath()
		ctx.MoveTo(curve[0].X, curve[0].Y)
		for _, p := range curve[1:] {
			ctx.LineTo(p.X, p.Y)
		}
		ctx.SetLineWidth(borderWidth)
		ctx.SetStrokeStyle(render.Solid(col))
		ctx.Stroke()

		if radius > 0 {
			ctx.SetFillStyle(render.Solid(col))
			for _, p := range pts {
				ctx.BeginPath()
				ctx.Arc(p.X, p.Y, radius, 0, 2*math.Pi, false)
				ctx.Fill()
			}
		}
	}
}

func (b *NativeBackend) drawLegend(ctx render.Context2D, datasets []render.Dataset, width float64) {
	const box = 20.0
	y := padding + float64(textHeight())/2

	total := 0.0
	for _, ds := range datasets {
		total += box + padding/2 + float64(textWidth(ds.Label)) + 2*padding
	}
	x := math.Max(padding, (width-total)/2)

	for i, ds := range datasets {
		ctx.BeginPath()
		ctx.MoveTo(x, y)
		ctx.LineTo(x+box, y)
		ctx.SetLineWidth(borderWidth)
		ctx.SetStrokeStyle(render.Solid(datasetColor(ds, i)))
		ctx.Stroke()
		x += box + padding/2
		drawText(ctx, ds.Label, textColor, x, y, alignLeft)
		x += float64(textWidth(ds.Label)) + 2*padding
	}
}
