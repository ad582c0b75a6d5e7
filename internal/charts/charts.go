// Package charts implements render.ChartingBackend three ways: a native
// backend drawing straight through the surface's 2D context, one rendering
// with go-chart and one rendering with gonum/plot. All of them honour the
// whole ChartConfig and treat empty datasets as an empty chart.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// Backend names accepted by New.
const (
	Native  = "native"
	GoChart = "gochart"
	Gonum   = "gonum"
)

// ErrUnknownBackend is returned by New for unsupported names.
var ErrUnknownBackend = errors.New("unknown chart backend")

// Chart.js defaults the backends mirror.
const (
	borderWidth = 3.0
	padding     = 6.0
)

var (
	gridColor = render.MustParseHex("#e8e8e8")
	textColor = render.MustParseHex("#333333")

	// used when a dataset colour does not parse
	fallbackColors = []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}
)

// Names lists the available backends.
func Names() []string {
	return []string{Native, GoChart, Gonum}
}

// New returns the backend registered under name. An empty name selects the
// native backend.
func New(name string) (render.ChartingBackend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Native:
		return NewNative(), nil
	case GoChart:
		return NewGoChart(), nil
	case Gonum:
		return NewGonum(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// chart is the instance every backend hands out.
type chart struct {
	surface   render.Surface
	cfg       render.ChartConfig
	destroyed bool
}

func (c *chart) Config() render.ChartConfig { return c.cfg }

// Destroy clears the surface. Later calls do nothing.
func (c *chart) Destroy() error {
	if c.destroyed {
		return nil
	}
	c.destroyed = true
	_, err := clearSurface(c.surface)
	return err
}

func clearSurface(s render.Surface) (render.Context2D, error) {
	ctx, err := s.Context2D()
	if err != nil {
		return nil, err
	}
	w, h := s.Size()
	ctx.ClearRect(0, 0, float64(w), float64(h))
	return ctx, nil
}

// ════════════════════════════════════════════════════════════════════
// Scales
// ════════════════════════════════════════════════════════════════════

// scale is the value domain shared by all datasets.
type scale struct {
	lo, hi float64
	n      int // longest dataset
}

// valueScale finds the global min/max across datasets and pads it by 5% on
// both sides. ok is false when there is nothing to plot.
func valueScale(datasets []render.Dataset) (sc scale, ok bool) {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, ds := range datasets {
		sc.n = max(sc.n, len(ds.Data))
		for _, v := range ds.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if sc.n == 0 || lo > hi {
		return scale{}, false
	}

	r := hi - lo
	if r < 0.001 {
		r = 1
	}
	sc.lo = lo - r*0.05
	sc.hi = hi + r*0.05
	return sc, true
}

// ticks returns count+1 evenly spaced values from lo to hi.
func (sc scale) ticks(count int) []float64 {
	out := make([]float64, count+1)
	for i := range out {
		out[i] = sc.lo + (sc.hi-sc.lo)*float64(i)/float64(count)
	}
	return out
}

// xMax is the last index on the x axis, at least 1 so a single point still
// gets a non-empty range.
func (sc scale) xMax() float64 {
	return math.Max(float64(sc.n-1), 1)
}

func tickLabel(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// ════════════════════════════════════════════════════════════════════
// Datasets
// ════════════════════════════════════════════════════════════════════

// datasetColor parses a dataset colour, falling back to a fixed palette.
func datasetColor(ds render.Dataset, i int) color.RGBA {
	if c, err := render.ParseHex(ds.BorderColor); err == nil {
		return c
	}
	return render.MustParseHex(fallbackColors[i%len(fallbackColors)])
}

// fillColor is the translucent area colour under a filled line.
func fillColor(c color.RGBA) color.RGBA {
	c.A = 0x40
	return c
}

// runs splits a dataset into stretches of finite values, as index/value
// points. Non-finite values leave gaps.
func runs(data []float64) [][]render.Point {
	var out [][]render.Point
	var cur []render.Point
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, render.Point{X: float64(i), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
