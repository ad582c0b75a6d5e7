package render

import (
	"fmt"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// SurfaceIDs names the three dashboard surfaces.
type SurfaceIDs struct {
	MatchGauge  string `mapstructure:"match_gauge"  yaml:"match_gauge"`
	PointsGauge string `mapstructure:"points_gauge" yaml:"points_gauge"`
	RatingChart string `mapstructure:"rating_chart" yaml:"rating_chart"`
}

// DefaultSurfaceIDs returns the identifiers used by the profile page.
func DefaultSurfaceIDs() SurfaceIDs {
	return SurfaceIDs{
		MatchGauge:  "matchesWinPercentageCanvas",
		PointsGauge: "pointsWinPercentageCanvas",
		RatingChart: "eloGraphCanvas",
	}
}

// All returns the identifiers in render order.
func (ids SurfaceIDs) All() []string {
	return []string{ids.MatchGauge, ids.PointsGauge, ids.RatingChart}
}

// Dashboard renders a whole profile onto its three surfaces.
type Dashboard struct {
	ids    SurfaceIDs
	gauges *GaugeRenderer
	series *TimeSeriesRenderer
}

// NewDashboard wires both renderers to one surface provider.
func NewDashboard(surfaces SurfaceProvider, backend ChartingBackend, ids SurfaceIDs) *Dashboard {
	return &Dashboard{
		ids:    ids,
		gauges: NewGaugeRenderer(surfaces),
		series: NewTimeSeriesRenderer(surfaces, backend),
	}
}

// SurfaceIDs returns the surfaces the dashboard draws on.
func (d *Dashboard) SurfaceIDs() SurfaceIDs {
	return d.ids
}

// TimeSeries exposes the chart renderer, mainly to reach live charts.
func (d *Dashboard) TimeSeries() *TimeSeriesRenderer {
	return d.series
}

// RenderAll draws the match gauge, the points gauge and the rating chart, in
// that order. The first failure stops the pass.
func (d *Dashboard) RenderAll(data *models.PlayerProfileData) error {
	if data == nil {
		return ErrNoProfileData
	}
	if err := d.gauges.Render(d.ids.MatchGauge, data.WinPerc, VariantMatch); err != nil {
		return fmt.Errorf("match gauge: %w", err)
	}
	if err := d.gauges.Render(d.ids.PointsGauge, data.RoundWinPerc, VariantPoints); err != nil {
		return fmt.Errorf("points gauge: %w", err)
	}
	if err := d.series.Render(d.ids.RatingChart, data); err != nil {
		return fmt.Errorf("rating chart: %w", err)
	}
	return nil
}
