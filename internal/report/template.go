package report

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
	"github.com/pdlmetrix/pdlmetrix/pkg/utils"
	"github.com/pdlmetrix/pdlmetrix/web"
)

// ════════════════════════════════════════════════════════════════════
// HTML pages: league index and player profile
// ════════════════════════════════════════════════════════════════════

// Page template names.
const (
	PageIndex  = "index.html"
	PagePlayer = "player.html"
)

// DefaultTitle heads the index page.
const DefaultTitle = "pdlmetrix"

// IndexData is the template model of the league index.
type IndexData struct {
	Title       string
	Players     []models.LeaderboardRow
	Games       []models.GameRow
	GeneratedAt string
}

// PlayerPageData is the template model of a player page. Without Surfaces
// the page carries the bare canvases for client side drawing.
type PlayerPageData struct {
	Title    string
	Profile  *models.PlayerProfile
	Chart    render.ChartConfig
	Surfaces []SurfaceImage
}

// SurfaceImage references a rendered surface from a page.
type SurfaceImage struct {
	ID     string
	URL    string
	Width  int
	Height int
	Alt    string
}

// Pages executes the embedded page templates.
type Pages struct {
	pages map[string]*template.Template
}

// NewPages parses the templates of fsys, web.Templates() when nil.
func NewPages(fsys fs.FS) (*Pages, error) {
	if fsys == nil {
		fsys = web.Templates()
	}
	p := &Pages{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PagePlayer} {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, "base.html", web.SurfacesLayout, name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

// Index writes the league index page.
func (p *Pages) Index(w io.Writer, data IndexData) error {
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	return p.execute(w, PageIndex, data)
}

// Player writes a player page.
func (p *Pages) Player(w io.Writer, data PlayerPageData) error {
	if data.Profile == nil {
		return render.ErrNoProfileData
	}
	if data.Title == "" {
		data.Title = data.Profile.Player.Name + " · " + DefaultTitle
	}
	return p.execute(w, PagePlayer, data)
}

func (p *Pages) execute(w io.Writer, name string, data any) error {
	if err := p.pages[name].ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	return nil
}

// SurfaceImages lists the rendered surfaces of out in dashboard order,
// addressed through urlFor.
func SurfaceImages(out *Output, ids render.SurfaceIDs, urlFor func(id string) string) []SurfaceImage {
	alts := map[string]string{
		ids.MatchGauge:  "Matches won",
		ids.PointsGauge: "Points won",
		ids.RatingChart: "Rating history",
	}
	images := make([]SurfaceImage, 0, 3)
	for _, id := range ids.All() {
		size, ok := out.Sizes[id]
		if !ok {
			continue
		}
		images = append(images, SurfaceImage{
			ID:     id,
			URL:    urlFor(id),
			Width:  size[0],
			Height: size[1],
			Alt:    alts[id],
		})
	}
	return images
}

// Timestamp formats a page generation time.
func Timestamp(t time.Time) string {
	return utils.FormatDateTime(t)
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"percent": utils.FormatPercent,
	"diffClass": func(diff string) string {
		switch {
		case strings.HasPrefix(diff, "-"):
			return "down"
		case diff == "+0":
			return ""
		default:
			return "up"
		}
	},
}
