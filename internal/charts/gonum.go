package charts

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// GonumBackend renders with gonum.org/v1/plot into an RGBA image and draws
// it onto the surface.
type GonumBackend struct{}

// NewGonum returns a gonum/plot backend.
func NewGonum() *GonumBackend {
	return &GonumBackend{}
}

// NewChart implements render.ChartingBackend.
func (b *GonumBackend) NewChart(s render.Surface, cfg render.ChartConfig) (render.Chart, error) {
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

	img, err := b.render(cfg, sc, w, h)
	if err != nil {
		return nil, fmt.Errorf("gonum: %w", err)
	}
	ctx.DrawImage(img, 0, 0, float64(w), float64(h))
	return c, nil
}

func (b *GonumBackend) render(cfg render.ChartConfig, sc scale, w, h int) (*image.RGBA, error) {
	p := plot.New()
	p.BackgroundColor = color.Transparent
	p.Legend.Top = true

	for i, ds := range cfg.Data.Datasets {
		col := datasetColor(ds, i)
		for j, run := range runs(ds.Data) {
			if len(run) < 2 {
				continue
			}
			line, err := plotter.NewLine(xys(smoothValues(run, ds.LineTension, sc, w, h)))
			if err != nil {
				return nil, fmt.Errorf("dataset %q: %w", ds.Label, err)
			}
			line.Color = col
			line.Width = vg.Points(borderWidth)
			if ds.Fill {
				line.FillColor = fillColor(col)
			}
			p.Add(line)
			if j == 0 && cfg.Options.Plugins.Legend.Display {
				p.Legend.Add(ds.Label, line)
			}
		}

		if r := cfg.Options.Elements.Point.Radius; r > 0 {
			for _, run := range runs(ds.Data) {
				dots, err := plotter.NewScatter(xys(run))
				if err != nil {
					return nil, fmt.Errorf("dataset %q: %w", ds.Label, err)
				}
				dots.GlyphStyle = draw.GlyphStyle{Color: col, Radius: vg.Points(r), Shape: draw.CircleGlyph{}}
				p.Add(dots)
			}
		}
	}

	if cfg.Options.Scales.Y.Display {
		grid := plotter.NewGrid()
		grid.Vertical.Color = nil
		grid.Horizontal.Color = gridColor
		p.Add(grid)
		p.Y.Tick.Marker = valueMarker(sc)
	} else {
		p.HideY()
	}
	if cfg.Options.Scales.X.Display {
		p.X.Tick.Marker = labelMarker(cfg.Data.Labels, sc.n)
	} else {
		p.HideX()
	}

	// Fixed after Add, which widens the ranges to the data.
	p.X.Min, p.X.Max = 0, sc.xMax()
	p.Y.Min, p.Y.Max = sc.lo, sc.hi

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	p.Draw(draw.New(vgimg.NewWith(vgimg.UseImage(img))))
	return img, nil
}

func xys(pts []render.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = p.X, p.Y
	}
	return out
}

func valueMarker(sc scale) plot.ConstantTicks {
	var ticks []plot.Tick
	for _, v := range sc.ticks(5) {
		ticks = append(ticks, plot.Tick{Value: v, Label: tickLabel(v)})
	}
	return plot.ConstantTicks(ticks)
}

func labelMarker(labels []string, n int) plot.ConstantTicks {
	interval := max(n/6, 1)
	var ticks []plot.Tick
	for i := 0; i < len(labels) && i < n; i += interval {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: labels[i]})
	}
	return plot.ConstantTicks(ticks)
}
