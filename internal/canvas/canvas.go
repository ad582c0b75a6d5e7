// Package canvas implements the drawing surfaces used by the profile
// dashboard: an RGBA raster surface encoded as PNG, a vector surface encoded
// as SVG, and a Document that resolves surfaces from <canvas> elements of an
// HTML page.
package canvas

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

// Canvas element defaults for missing or invalid width/height attributes.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// ErrUnknownKind is returned for surface kinds other than png and svg.
var ErrUnknownKind = errors.New("unknown surface kind")

// Kind selects how a surface stores and encodes its pixels.
type Kind string

const (
	KindPNG Kind = "png"
	KindSVG Kind = "svg"
)

// ParseKind accepts "png" or "svg" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPNG, KindSVG:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ContentType returns the MIME type of encoded surfaces.
func (k Kind) ContentType() string {
	if k == KindSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Surface is a render.Surface that can be encoded once drawn.
type Surface interface {
	render.Surface

	Kind() Kind

	// SetClientSize sets the layout size reported by ClientSize. Zero
	// values fall back to the intrinsic size.
	SetClientSize(width, height int)

	Encode(w io.Writer) error
}

// New creates an empty surface of the given kind.
func New(kind Kind, id string, width, height int) (Surface, error) {
	switch kind {
	case KindPNG:
		return NewRasterSurface(id, width, height), nil
	case KindSVG:
		return NewSVGSurface(id, width, height), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// base holds the sizing state shared by both surface kinds.
type base struct {
	id      string
	w, h    int
	clientW int
	clientH int
}

func newBase(id string, w, h int) base {
	return base{id: id, w: max(w, 0), h: max(h, 0)}
}

func (b *base) ID() string { return b.id }

func (b *base) Size() (int, int) { return b.w, b.h }

func (b *base) ClientSize() (int, int) {
	w, h := b.clientW, b.clientH
	if w <= 0 {
		w = b.w
	}
	if h <= 0 {
		h = b.h
	}
	return w, h
}

func (b *base) SetClientSize(w, h int) {
	b.clientW, b.clientH = w, h
}
