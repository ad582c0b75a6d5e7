// Package report renders player dashboards and league pages. It parses the
// embedded surfaces layout into a canvas document, draws the profile with
// render.Dashboard and the configured chart backend, and encodes every
// surface as PNG or SVG.
package report

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pdlmetrix/pdlmetrix/internal/canvas"
	"github.com/pdlmetrix/pdlmetrix/internal/charts"
	"github.com/pdlmetrix/pdlmetrix/internal/render"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
	"github.com/pdlmetrix/pdlmetrix/web"
)

// ════════════════════════════════════════════════════════════════════
// Renderer: profile data to encoded surfaces
// ════════════════════════════════════════════════════════════════════

// Config controls dashboard rendering.
type Config struct {
	Kind        canvas.Kind       // surface format (default: png)
	Backend     string            // chart backend name (default: native)
	Surfaces    render.SurfaceIDs // canvas ids (default: render.DefaultSurfaceIDs)
	Concurrency int               // RenderMany worker limit (default: GOMAXPROCS)
	Layout      []byte            // HTML holding the canvases (default: web.Layout)
	Logger      *logrus.Entry
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Kind:        canvas.KindPNG,
		Backend:     charts.Native,
		Surfaces:    render.DefaultSurfaceIDs(),
		Concurrency: runtime.GOMAXPROCS(0),
	}
}

// Output is one rendered dashboard.
type Output struct {
	Player   string
	Kind     canvas.Kind
	Surfaces map[string][]byte  // encoded surface by canvas id
	Sizes    map[string][2]int  // drawing buffer size by canvas id
	Chart    render.ChartConfig // contract the rating chart was drawn from
	Fragment string             // layout with canvases replaced by their images
	Elapsed  time.Duration
}

// Renderer draws dashboards. It is safe for concurrent use; every render
// works on its own document.
type Renderer struct {
	cfg     Config
	backend render.ChartingBackend
	log     *logrus.Entry
}

// NewRenderer validates cfg and fills in defaults.
func NewRenderer(cfg Config) (*Renderer, error) {
	def := DefaultConfig()
	if cfg.Kind == "" {
		cfg.Kind = def.Kind
	}
	kind, err := canvas.ParseKind(string(cfg.Kind))
	if err != nil {
		return nil, err
	}
	cfg.Kind = kind

	backend, err := charts.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if cfg.Surfaces == (render.SurfaceIDs{}) {
		cfg.Surfaces = def.Surfaces
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Layout == nil {
		cfg.Layout = web.Layout()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Renderer{cfg: cfg, backend: backend, log: log.WithField("component", "report")}, nil
}

// Kind returns the surface format the renderer produces.
func (r *Renderer) Kind() canvas.Kind { return r.cfg.Kind }

// SurfaceIDs returns the canvases every dashboard draws on.
func (r *Renderer) SurfaceIDs() render.SurfaceIDs { return r.cfg.Surfaces }

// Render draws one profile.
func (r *Renderer) Render(ctx context.Context, profile *models.PlayerProfile) (*Output, error) {
	if profile == nil {
		return nil, render.ErrNoProfileData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := canvas.ParseDocument(bytes.NewReader(r.cfg.Layout), r.cfg.Kind)
	if err != nil {
		return nil, err
	}
	dash := render.NewDashboard(doc, r.backend, r.cfg.Surfaces)
	if err := dash.RenderAll(&profile.Data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", profile.Player.Name, err)
	}

	out := &Output{
		Player:   profile.Player.Name,
		Kind:     r.cfg.Kind,
		Surfaces: make(map[string][]byte, 3),
		Sizes:    make(map[string][2]int, 3),
	}
	for _, id := range r.cfg.Surfaces.All() {
		s, err := doc.Surface(id)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := s.Encode(&buf); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", id, err)
		}
		w, h := s.Size()
		out.Surfaces[id] = buf.Bytes()
		out.Sizes[id] = [2]int{w, h}
	}
	if c, ok := dash.TimeSeries().Chart(r.cfg.Surfaces.RatingChart); ok {
		out.Chart = c.Config()
	}
	if out.Fragment, err = doc.Snapshot(); err != nil {
		return nil, err
	}
	out.Elapsed = time.Since(start)

	r.log.WithFields(logrus.Fields{
		"player":  out.Player,
		"kind":    out.Kind,
		"elapsed": FormatDuration(out.Elapsed),
	}).Debug("dashboard rendered")
	return out, nil
}

// RenderMany draws several profiles concurrently, at most Concurrency at a
// time. Outputs keep the order of profiles. The first failure cancels the
// remaining renders.
func (r *Renderer) RenderMany(ctx context.Context, profiles []*models.PlayerProfile) ([]*Output, error) {
	outputs := make([]*Output, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, p := range profiles {
		g.Go(func() error {
			out, err := r.Render(gctx, p)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// SurfaceFilename is the file name a surface is written to or served as.
func SurfaceFilename(id string, kind canvas.Kind) string {
	return id + "." + string(kind)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
