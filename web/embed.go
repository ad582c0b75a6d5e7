// Package web embeds the HTML templates served and rendered by pdlmetrix.
//
// templates/surfaces.html holds the three dashboard canvases. It is parsed
// server side to size the drawing surfaces and is also included in the
// player page, so the browser and the renderer agree on the layout.
//
// Usage:
//
//	import "github.com/pdlmetrix/pdlmetrix/web"
//	tfs := web.Templates() // io/fs.FS rooted at templates/
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed templates/*.html
var templates embed.FS

// SurfacesLayout is the file name of the dashboard canvas fragment.
const SurfacesLayout = "surfaces.html"

// Templates returns a filesystem rooted at the embedded templates/ directory.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		log.Fatalf("web.Templates: %v", err)
	}
	return sub
}

// Layout returns the raw dashboard canvas fragment.
func Layout() []byte {
	b, err := fs.ReadFile(templates, "templates/"+SurfacesLayout)
	if err != nil {
		log.Fatalf("web.Layout: %v", err)
	}
	return b
}
