package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

var (
	styleWidthRe  = regexp.MustCompile(`(?i)(?:^|[;\s])width\s*:\s*([0-9]*\.?[0-9]+)px`)
	styleHeightRe = regexp.MustCompile(`(?i)(?:^|[;\s])height\s*:\s*([0-9]*\.?[0-9]+)px`)
)

// Document resolves surfaces from the <canvas> elements of an HTML page.
// A surface is created on first resolve and the same instance is returned
// afterwards. Document is safe for concurrent use.
type Document struct {
	doc  *goquery.Document
	kind Kind

	mu       sync.Mutex
	surfaces map[string]Surface
}

// ParseDocument parses HTML from r. Surfaces are created with the given kind.
func ParseDocument(r io.Reader, kind Kind) (*Document, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &Document{doc: doc, kind: kind, surfaces: make(map[string]Surface)}, nil
}

// NewDocument parses an HTML string.
func NewDocument(html string, kind Kind) (*Document, error) {
	return ParseDocument(strings.NewReader(html), kind)
}

// Kind returns the kind of surfaces the document creates.
func (d *Document) Kind() Kind { return d.kind }

// CanvasIDs lists the ids of all canvas elements in document order.
func (d *Document) CanvasIDs() []string {
	var ids []string
	d.doc.Find("canvas[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids = append(ids, id)
	})
	return ids
}

// Resolve implements render.SurfaceProvider.
func (d *Document) Resolve(id string) (render.Surface, error) {
	s, err := d.Surface(id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Surface is Resolve with the concrete surface type.
func (d *Document) Surface(id string) (Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.surfaces[id]; ok {
		return s, nil
	}
	el := d.canvas(id)
	if el == nil {
		return nil, fmt.Errorf("%w: %q", render.ErrSurfaceNotFound, id)
	}

	w := intAttr(el, "width", DefaultWidth)
	h := intAttr(el, "height", DefaultHeight)
	s, err := New(d.kind, id, w, h)
	if err != nil {
		return nil, err
	}
	s.SetClientSize(clientSize(el))
	d.surfaces[id] = s
	return s, nil
}

// Snapshot returns the page with every resolved canvas replaced by a static
// image of its current contents: an <img> data URI for raster surfaces and
// inline markup for SVG surfaces. The document itself is left untouched.
func (d *Document) Snapshot() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	root := d.doc.Selection.Clone()
	for id, s := range d.surfaces {
		el := findCanvas(root, id)
		if el == nil {
			continue
		}
		var buf bytes.Buffer
		if err := s.Encode(&buf); err != nil {
			return "", fmt.Errorf("encoding surface %s: %w", id, err)
		}
		if s.Kind() == KindSVG {
			el.ReplaceWithHtml(buf.String())
			continue
		}
		w, h := s.Size()
		el.ReplaceWithHtml(fmt.Sprintf(`<img id="%s" width="%d" height="%d" src="data:image/png;base64,%s"/>`,
			escapeXML(id), w, h, base64.StdEncoding.EncodeToString(buf.Bytes())))
	}
	return goquery.OuterHtml(root)
}

func (d *Document) canvas(id string) *goquery.Selection {
	return findCanvas(d.doc.Selection, id)
}

func findCanvas(root *goquery.Selection, id string) *goquery.Selection {
	el := root.Find("canvas").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("id")
		return ok && v == id
	}).First()
	if el.Length() == 0 {
		return nil
	}
	return el
}

// intAttr parses a canvas dimension attribute. Missing or invalid values
// use the default, as browsers do.
func intAttr(el *goquery.Selection, name string, def int) int {
	v, ok := el.Attr(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// clientSize reads the layout size from data-client-* attributes or inline
// pixel styles. Zero means unknown.
func clientSize(el *goquery.Selection) (int, int) {
	w, h := intAttr(el, "data-client-width", 0), intAttr(el, "data-client-height", 0)
	style, _ := el.Attr("style")
	if w == 0 {
		w = stylePx(styleWidthRe, style)
	}
	if h == 0 {
		h = stylePx(styleHeightRe, style)
	}
	return w, h
}

func stylePx(re *regexp.Regexp, style string) int {
	m := re.FindStringSubmatch(style)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int(f + 0.5)
}
