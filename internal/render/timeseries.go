package render

import (
	"fmt"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// TimeSeriesRenderer draws the match and points rating histories as one
// line chart. It keeps the live chart of every surface it has drawn on and
// replaces it on the next render, so repeated calls never stack charts.
// It is not safe for concurrent use.
type TimeSeriesRenderer struct {
	surfaces SurfaceProvider
	backend  ChartingBackend
	charts   map[string]Chart
}

// NewTimeSeriesRenderer returns a renderer drawing through backend.
func NewTimeSeriesRenderer(p SurfaceProvider, backend ChartingBackend) *TimeSeriesRenderer {
	return &TimeSeriesRenderer{
		surfaces: p,
		backend:  backend,
		charts:   make(map[string]Chart),
	}
}

// Render sizes the surface to its client size and draws the rating chart.
func (t *TimeSeriesRenderer) Render(surfaceID string, data *models.PlayerProfileData) error {
	if data == nil {
		return ErrNoProfileData
	}
	s, err := t.surfaces.Resolve(surfaceID)
	if err != nil {
		return err
	}

	// The drawing buffer is stale until it matches the layout size.
	s.Resize(s.ClientSize())

	if prev, ok := t.charts[surfaceID]; ok {
		delete(t.charts, surfaceID)
		if err := prev.Destroy(); err != nil {
			return fmt.Errorf("surface %s: destroying previous chart: %w", surfaceID, err)
		}
	}

	chart, err := t.backend.NewChart(s, BuildChartConfig(data))
	if err != nil {
		return fmt.Errorf("surface %s: %w", surfaceID, err)
	}
	t.charts[surfaceID] = chart
	return nil
}

// Chart returns the live chart bound to a surface.
func (t *TimeSeriesRenderer) Chart(surfaceID string) (Chart, bool) {
	c, ok := t.charts[surfaceID]
	return c, ok
}
