package render

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func dashboardFixture() (*fakeProvider, *fakeBackend, SurfaceIDs) {
	ids := DefaultSurfaceIDs()
	p := newFakeProvider(
		newFakeSurface(ids.MatchGauge, 200, 200),
		newFakeSurface(ids.PointsGauge, 200, 200),
		newFakeSurface(ids.RatingChart, 300, 150),
	)
	return p, &fakeBackend{}, ids
}

func TestDashboardRenderAllScenario(t *testing.T) {
	p, b, ids := dashboardFixture()
	d := NewDashboard(p, b, ids)

	if err := d.RenderAll(sampleProfile()); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	wantOrder := []string{ids.MatchGauge, ids.PointsGauge, ids.RatingChart}
	if !reflect.DeepEqual(p.resolved, wantOrder) {
		t.Errorf("resolve order: got %v, want %v", p.resolved, wantOrder)
	}

	match := p.surfaces[ids.MatchGauge].ctx.arcs[0]
	if got := match.start - match.end; math.Abs(got-3*math.Pi/2) > 1e-9 {
		t.Errorf("match sweep: got %v rad, want 270°", got)
	}
	grd := p.surfaces[ids.MatchGauge].ctx.strokes[0].paint.(*ConicGradient)
	if Hex(grd.Stops[1].Color) != "#8cb369" {
		t.Errorf("match gauge should be green, got %s", Hex(grd.Stops[1].Color))
	}

	points := p.surfaces[ids.PointsGauge].ctx.arcs[0]
	if got := points.start - points.end; math.Abs(got-144*math.Pi/180) > 1e-9 {
		t.Errorf("points sweep: got %v rad, want 144°", got)
	}
	grd = p.surfaces[ids.PointsGauge].ctx.strokes[0].paint.(*ConicGradient)
	if Hex(grd.Stops[1].Color) != "#a0c4ff" {
		t.Errorf("points gauge should be blue, got %s", Hex(grd.Stops[1].Color))
	}

	if len(b.charts) != 1 {
		t.Fatalf("charts: got %d, want 1", len(b.charts))
	}
	for _, ds := range b.charts[0].cfg.Data.Datasets {
		if len(ds.Data) != 3 {
			t.Errorf("%s: got %d points, want 3", ds.Label, len(ds.Data))
		}
	}
}

func TestDashboardStopsAtFirstFailure(t *testing.T) {
	p, b, ids := dashboardFixture()
	delete(p.surfaces, ids.PointsGauge)

	err := NewDashboard(p, b, ids).RenderAll(sampleProfile())
	if !errors.Is(err, ErrSurfaceNotFound) {
		t.Fatalf("got %v, want ErrSurfaceNotFound", err)
	}
	if len(p.surfaces[ids.MatchGauge].ctx.strokes) != 1 {
		t.Error("match gauge should have been drawn before the failure")
	}
	if len(b.charts) != 0 {
		t.Error("rating chart should not be drawn after a failure")
	}
}

func TestDashboardNilData(t *testing.T) {
	p, b, ids := dashboardFixture()
	if err := NewDashboard(p, b, ids).RenderAll(nil); !errors.Is(err, ErrNoProfileData) {
		t.Errorf("got %v, want ErrNoProfileData", err)
	}
	if len(p.resolved) != 0 {
		t.Errorf("no surface should be touched, resolved %v", p.resolved)
	}
}

func TestSurfaceIDsAll(t *testing.T) {
	ids := DefaultSurfaceIDs()
	want := []string{"matchesWinPercentageCanvas", "pointsWinPercentageCanvas", "eloGraphCanvas"}
	if !reflect.DeepEqual(ids.All(), want) {
		t.Errorf("All: got %v, want %v", ids.All(), want)
	}
}
