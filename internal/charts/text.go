package charts

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pdlmetrix/pdlmetrix/internal/render"
)

var labelFace = basicfont.Face7x13

// textWidth measures s in pixels.
func textWidth(s string) int {
	d := &font.Drawer{Face: labelFace}
	return d.MeasureString(s).Ceil()
}

func textHeight() int {
	return labelFace.Metrics().Height.Ceil()
}

// textImage renders s onto a transparent image just large enough for it.
func textImage(s string, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(textWidth(s), 1), textHeight()))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.Point26_6{X: 0, Y: labelFace.Metrics().Ascent},
	}
	d.DrawString(s)
	return img
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// drawText places s with its vertical centre on y.
func drawText(ctx render.Context2D, s string, c color.RGBA, x, y float64, a align) {
	if s == "" {
		return
	}
	img := textImage(s, c)
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	switch a {
	case alignCenter:
		x -= w / 2
	case alignRight:
		x -= w
	}
	ctx.DrawImage(img, x, y-h/2, w, h)
}
