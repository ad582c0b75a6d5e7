package report

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Static site: the server's pages written to disk
// ════════════════════════════════════════════════════════════════════

// PlayerURL is the path of a player page.
func PlayerURL(name string) string {
	return "/players/" + url.PathEscape(name)
}

// SurfaceURL is the path a rendered surface is served from.
func SurfaceURL(player, file string) string {
	return PlayerURL(player) + "/surfaces/" + url.PathEscape(file)
}

// SiteStats reports what WriteSite produced.
type SiteStats struct {
	Players  int
	Surfaces int
	Skipped  []string // players whose names cannot be a directory
}

// WriteSite renders every profile and writes the index page, the player
// pages and their surfaces under dir using the server's URL layout, so the
// directory can be served as is.
func WriteSite(ctx context.Context, dir string, r *Renderer, p *Pages, index IndexData, profiles []*models.PlayerProfile) (*SiteStats, error) {
	stats := &SiteStats{}

	kept := make([]*models.PlayerProfile, 0, len(profiles))
	for _, prof := range profiles {
		if !safeDirName(prof.Player.Name) {
			stats.Skipped = append(stats.Skipped, prof.Player.Name)
			continue
		}
		kept = append(kept, prof)
	}

	outputs, err := r.RenderMany(ctx, kept)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := p.Index(&buf, index); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(dir, "index.html"), buf.Bytes()); err != nil {
		return nil, err
	}

	for i, out := range outputs {
		prof := kept[i]
		playerDir := filepath.Join(dir, "players", prof.Player.Name)
		for id, data := range out.Surfaces {
			name := SurfaceFilename(id, out.Kind)
			if err := writeFile(filepath.Join(playerDir, "surfaces", name), data); err != nil {
				return nil, err
			}
			stats.Surfaces++
		}

		buf.Reset()
		err := p.Player(&buf, PlayerPageData{
			Title:   prof.Player.Name + " · " + titleOr(index.Title),
			Profile: prof,
			Chart:   out.Chart,
			Surfaces: SurfaceImages(out, r.SurfaceIDs(), func(id string) string {
				return SurfaceURL(prof.Player.Name, SurfaceFilename(id, out.Kind))
			}),
		})
		if err != nil {
			return nil, err
		}
		if err := writeFile(filepath.Join(playerDir, "index.html"), buf.Bytes()); err != nil {
			return nil, err
		}
		stats.Players++
	}
	return stats, nil
}

func safeDirName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func titleOr(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
