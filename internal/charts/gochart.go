package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// GoChartBackend renders with github.com/wcharczuk/go-chart and draws the
// resulting PNG onto the surface.
type GoChartBackend struct{}

// NewGoChart returns a go-chart backend.
func NewGoChart() *GoChartBackend {
	return &GoChartBackend{}
}

// NewChart implements render.ChartingBackend.
func (b *GoChartBackend) NewChart(s render.Surface, cfg render.ChartConfig) (render.Chart, error) {
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
		return nil, fmt.Errorf("gochart: %w", err)
	}
	ctx.DrawImage(img, 0, 0, float64(w), float64(h))
	return c, nil
}

func (b *GoChartBackend) render(cfg render.ChartConfig, sc scale, w, h int) (image.Image, error) {
	xAxis := gochart.HideXAxis()
	if cfg.Options.Scales.X.Display {
		xAxis = gochart.XAxis{Ticks: labelTicks(cfg.Data.Labels, sc.n)}
	}
	xAxis.Range = &gochart.ContinuousRange{Min: 0, Max: sc.xMax()}

	yAxis := gochart.HideYAxis()
	if cfg.Options.Scales.Y.Display {
		yAxis = gochart.YAxis{
			Ticks: valueTicks(sc),
			GridMajorStyle: gochart.Style{
				StrokeColor: goColor(gridColor),
				StrokeWidth: 1,
			},
			GridLines: gridLines(sc),
		}
	}
	yAxis.Range = &gochart.ContinuousRange{Min: sc.lo, Max: sc.hi}

	var series []gochart.Series
	for i, ds := range cfg.Data.Datasets {
		col := goColor(datasetColor(ds, i))
		style := gochart.Style{
			StrokeColor: col,
			StrokeWidth: borderWidth,
		}
		if ds.Fill {
			style.FillColor = goColor(fillColor(datasetColor(ds, i)))
		}

		for j, run := range runs(ds.Data) {
			if len(run) < 2 {
				continue
			}
			xs, ys := split(smoothValues(run, ds.LineTension, sc, w, h))
			name := ds.Label
			if j > 0 {
				name = ""
			}
			series = append(series, gochart.ContinuousSeries{Name: name, Style: style, XValues: xs, YValues: ys})
		}

		if r := cfg.Options.Elements.Point.Radius; r > 0 {
			for _, run := range runs(ds.Data) {
				xs, ys := split(run)
				series = append(series, gochart.ContinuousSeries{
					Style: gochart.Style{
						StrokeColor: drawing.ColorTransparent,
						DotWidth:    r,
						DotColor:    col,
					},
					XValues: xs,
					YValues: ys,
				})
			}
		}
	}
	if len(series) == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h)), nil
	}

	graph := gochart.Chart{
		Width:  w,
		Height: h,
		Background: gochart.Style{
			FillColor: drawing.ColorTransparent,
			Padding:   gochart.Box{Top: padding, Left: padding, Right: padding, Bottom: padding},
		},
		Canvas: gochart.Style{FillColor: drawing.ColorTransparent},
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: series,
	}
	if cfg.Options.Plugins.Legend.Display {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func goColor(c color.RGBA) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(render.Hex(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}), "#")).WithAlpha(c.A)
}

func split(pts []render.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func valueTicks(sc scale) []gochart.Tick {
	var out []gochart.Tick
	for _, v := range sc.ticks(5) {
		out = append(out, gochart.Tick{Value: v, Label: tickLabel(v)})
	}
	return out
}

func gridLines(sc scale) []gochart.GridLine {
	var out []gochart.GridLine
	for _, v := range sc.ticks(5) {
		out = append(out, gochart.GridLine{Value: v})
	}
	return out
}

func labelTicks(labels []string, n int) []gochart.Tick {
	interval := max(n/6, 1)
	var out []gochart.Tick
	for i := 0; i < len(labels) && i < n; i += interval {
		out = append(out, gochart.Tick{Value: float64(i), Label: labels[i]})
	}
	return out
}
