package render

import (
	"strconv"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// ChartType names the chart kind.
type ChartType string

const ChartTypeLine ChartType = "line"

// ChartConfig is the contract handed to a ChartingBackend. Field names and
// JSON tags follow Chart.js so the same value can drive a browser chart.
type ChartConfig struct {
	Type    ChartType    `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

// ChartData holds axis labels and series.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series.
type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
	LineTension float64   `json:"lineTension"`
}

// ChartOptions controls interaction, animation and decorations.
type ChartOptions struct {
	MaintainAspectRatio bool           `json:"maintainAspectRatio"`
	Events              []string       `json:"events"`
	Animation           bool           `json:"animation"`
	Plugins             PluginOptions  `json:"plugins"`
	Scales              ScaleOptions   `json:"scales"`
	Elements            ElementOptions `json:"elements"`
}

type PluginOptions struct {
	Legend LegendOptions `json:"legend"`
}

type LegendOptions struct {
	Display bool `json:"display"`
}

// ScaleOptions configures the axes. The y axis is shown unless disabled.
type ScaleOptions struct {
	X AxisOptions `json:"x"`
	Y AxisOptions `json:"y"`
}

type AxisOptions struct {
	Display bool `json:"display"`
}

type ElementOptions struct {
	Point PointOptions `json:"point"`
}

type PointOptions struct {
	Radius float64 `json:"radius"`
}

// ChartingBackend turns a ChartConfig into pixels on a surface.
type ChartingBackend interface {
	NewChart(s Surface, cfg ChartConfig) (Chart, error)
}

// Chart is a chart instance bound to a surface.
type Chart interface {
	Config() ChartConfig

	// Destroy detaches the chart and clears its surface.
	Destroy() error
}

// Series labels.
const (
	MatchSeriesLabel  = "Match"
	PointsSeriesLabel = "Points"
)

// seriesTension is the curve smoothing applied to both rating lines.
const seriesTension = 0.3

// BuildChartConfig assembles the rating chart contract for a profile.
//
// The x axis labels are the match rating values themselves rather than game
// indices or dates. The axis is hidden, so this only shows up for consumers
// of the JSON form.
func BuildChartConfig(data *models.PlayerProfileData) ChartConfig {
	labels := make([]string, len(data.EloHistory))
	for i, v := range data.EloHistory {
		labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	return ChartConfig{
		Type: ChartTypeLine,
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{
				{
					Label:       MatchSeriesLabel,
					Data:        copyValues(data.EloHistory),
					BorderColor: Hex(MatchPalette.Dark),
					LineTension: seriesTension,
				},
				{
					Label:       PointsSeriesLabel,
					Data:        copyValues(data.PointsEloHistory),
					BorderColor: Hex(PointsPalette.Dark),
					LineTension: seriesTension,
				},
			},
		},
		Options: ChartOptions{
			MaintainAspectRatio: true,
			Events:              []string{},
			Animation:           false,
			Plugins:             PluginOptions{Legend: LegendOptions{Display: false}},
			Scales: ScaleOptions{
				X: AxisOptions{Display: false},
				Y: AxisOptions{Display: true},
			},
			Elements: ElementOptions{Point: PointOptions{Radius: 0}},
		},
	}
}

func copyValues(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
