package charts

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdlmetrix/pdlmetrix/internal/canvas"
	"github.com/pdlmetrix/pdlmetrix/internal/render"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

func ratingConfig() render.ChartConfig {
	return render.BuildChartConfig(&models.PlayerProfileData{
		WinPerc:          60,
		RoundWinPerc:     55,
		EloHistory:       []float64{1000, 1016, 1031, 1015, 1030, 1046},
		PointsEloHistory: []float64{1000, 1004, 1009, 1003, 1008, 1010},
	})
}

func emptyConfig() render.ChartConfig {
	return render.BuildChartConfig(&models.PlayerProfileData{})
}

// ════════════════════════════════════════════════════════════════════
// Registry
// ════════════════════════════════════════════════════════════════════

func TestNew(t *testing.T) {
	for _, name := range append(Names(), "", " GoChart ") {
		b, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, b)
	}

	b, _ := New("")
	assert.IsType(t, &NativeBackend{}, b)

	_, err := New("chartjs")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

// ════════════════════════════════════════════════════════════════════
// Scales and smoothing
// ════════════════════════════════════════════════════════════════════

func TestValueScale(t *testing.T) {
	sc, ok := valueScale([]render.Dataset{{Data: []float64{1000, 1010}}, {Data: []float64{1005, math.NaN(), 1002}}})
	require.True(t, ok)
	assert.InDelta(t, 999.5, sc.lo, 1e-9)
	assert.InDelta(t, 1010.5, sc.hi, 1e-9)
	assert.Equal(t, 3, sc.n)
	assert.Equal(t, 2.0, sc.xMax())

	sc, ok = valueScale([]render.Dataset{{Data: []float64{1000}}})
	require.True(t, ok)
	assert.InDelta(t, 999.95, sc.lo, 1e-9)
	assert.InDelta(t, 1000.05, sc.hi, 1e-9)
	assert.Equal(t, 1.0, sc.xMax())

	_, ok = valueScale([]render.Dataset{{Data: nil}, {Data: []float64{}}})
	assert.False(t, ok)

	_, ok = valueScale([]render.Dataset{{Data: []float64{math.NaN()}}})
	assert.False(t, ok)
}

func TestRuns(t *testing.T) {
	got := runs([]float64{1, 2, math.NaN(), 4, math.Inf(1), math.Inf(-1), 7})
	require.Len(t, got, 3)
	assert.Equal(t, []render.Point{{X: 0, Y: 1}, {X: 1, Y: 2}}, got[0])
	assert.Equal(t, []render.Point{{X: 3, Y: 4}}, got[1])
	assert.Equal(t, []render.Point{{X: 6, Y: 7}}, got[2])
}

func TestControlPoints(t *testing.T) {
	before, after := ControlPoints(render.Point{X: 0}, render.Point{X: 1}, render.Point{X: 2}, 0.4)
	assert.InDelta(t, 0.6, before.X, 1e-9)
	assert.InDelta(t, 1.4, after.X, 1e-9)

	// Coincident neighbours leave the point where it is.
	p := render.Point{X: 3, Y: 3}
	before, after = ControlPoints(p, p, p, 0.4)
	assert.Equal(t, p, before)
	assert.Equal(t, p, after)
}

func TestSmoothKeepsDataPoints(t *testing.T) {
	pts := []render.Point{{X: 0, Y: 50}, {X: 40, Y: 10}, {X: 80, Y: 90}, {X: 120, Y: 40}}
	curve := Smooth(pts, 0.3, 0, 100)

	assert.Greater(t, len(curve), len(pts))
	assert.Equal(t, pts[0], curve[0])
	assert.Equal(t, pts[len(pts)-1], curve[len(curve)-1])
	for _, p := range pts {
		assert.Contains(t, curve, p)
	}
	for _, p := range curve {
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 100.0)
	}
}

func TestSmoothIsIdentityWithoutTension(t *testing.T) {
	pts := []render.Point{{X: 0, Y: 0}, {X: 1, Y: 5}, {X: 2, Y: 1}}
	assert.Equal(t, pts, Smooth(pts, 0, 0, 10))
	assert.Equal(t, pts[:2], Smooth(pts[:2], 0.3, 0, 10))
}

func TestSmoothValuesRoundTrips(t *testing.T) {
	sc := scale{lo: 990, hi: 1050, n: 3}
	pts := []render.Point{{X: 0, Y: 1000}, {X: 1, Y: 1040}, {X: 2, Y: 1010}}
	out := smoothValues(pts, 0.3, sc, 300, 150)
	for _, p := range pts {
		found := false
		for _, q := range out {
			if math.Abs(p.X-q.X) < 1e-9 && math.Abs(p.Y-q.Y) < 1e-9 {
				found = true
			}
		}
		assert.True(t, found, "point %v missing from smoothed series", p)
	}
}

// ════════════════════════════════════════════════════════════════════
// Backends
// ════════════════════════════════════════════════════════════════════

func TestBackendsDrawRatingChart(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, err := New(name)
			require.NoError(t, err)

			s := canvas.NewRasterSurface("eloGraphCanvas", 300, 150)
			c, err := b.NewChart(s, ratingConfig())
			require.NoError(t, err)
			assert.Equal(t, ratingConfig(), c.Config())
			assert.Greater(t, opaquePixels(s.Image()), 0)

			require.NoError(t, c.Destroy())
			assert.Zero(t, opaquePixels(s.Image()), "destroy clears the surface")
			require.NoError(t, c.Destroy())
		})
	}
}

func TestBackendsTolerateEmptyDatasets(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, _ := New(name)
			s := canvas.NewRasterSurface("eloGraphCanvas", 300, 150)

			// Leftovers from an earlier chart must go.
			ctx, _ := s.Context2D()
			ctx.DrawImage(solidImage(10, 10), 0, 0, 10, 10)

			c, err := b.NewChart(s, emptyConfig())
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Zero(t, opaquePixels(s.Image()))
		})
	}
}

func TestBackendsSinglePoint(t *testing.T) {
	cfg := render.BuildChartConfig(&models.PlayerProfileData{
		EloHistory:       []float64{1016},
		PointsEloHistory: []float64{1004},
	})
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, _ := New(name)
			_, err := b.NewChart(canvas.NewRasterSurface("c", 300, 150), cfg)
			assert.NoError(t, err)
		})
	}
}

func TestNativeUsesDatasetColours(t *testing.T) {
	s := canvas.NewSVGSurface("eloGraphCanvas", 300, 150)
	_, err := NewNative().NewChart(s, ratingConfig())
	require.NoError(t, err)

	out := s.Markup()
	assert.Contains(t, out, `stroke="#8cb369" stroke-width="3"`)
	assert.Contains(t, out, `stroke="#a0c4ff" stroke-width="3"`)
	assert.Contains(t, out, `stroke="#e8e8e8"`, "y grid is drawn")
	assert.Contains(t, out, "data:image/png;base64,", "tick labels are drawn")
	assert.NotContains(t, out, " Z\"", "nothing is filled")
}

func TestNativeHonoursOptions(t *testing.T) {
	cfg := ratingConfig()
	cfg.Data.Datasets[0].Fill = true
	cfg.Options.Scales.Y.Display = false
	cfg.Options.Elements.Point.Radius = 2

	s := canvas.NewSVGSurface("eloGraphCanvas", 300, 150)
	_, err := NewNative().NewChart(s, cfg)
	require.NoError(t, err)

	out := s.Markup()
	assert.Contains(t, out, `fill="#8cb369" fill-opacity="0.251"`, "filled area under the match line")
	assert.NotContains(t, out, `fill="#8cb36940"`, "SVG 1.1 colours carry no alpha")
	assert.NotContains(t, out, `stroke="#e8e8e8"`)
	assert.NotContains(t, out, "data:image/png")
	// one dot per value on both lines
	assert.Equal(t, 12, strings.Count(out, `stroke="none"`)-1)
}

func TestNativeLegend(t *testing.T) {
	cfg := ratingConfig()
	cfg.Options.Plugins.Legend.Display = true
	cfg.Options.Scales.Y.Display = false

	s := canvas.NewSVGSurface("eloGraphCanvas", 300, 150)
	_, err := NewNative().NewChart(s, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(s.Markup(), "data:image/png;base64,"), "one label per dataset")
}

func TestDatasetColorFallback(t *testing.T) {
	c := datasetColor(render.Dataset{BorderColor: "teal"}, 1)
	assert.Equal(t, render.MustParseHex(fallbackColors[1]), c)
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func opaquePixels(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 0xff})
		}
	}
	return img
}
