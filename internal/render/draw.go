package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type pointF struct {
	X float64
	Y float64
}

const labelEllipsis = "..."

// fitLabel collapses text onto one line and cuts it to width pixels.
func fitLabel(face font.Face, text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if font.MeasureString(face, text).Round() <= width {
		return text
	}
	room := fixed.I(width) - font.MeasureString(face, labelEllipsis)
	var used fixed.Int26_6
	for i, r := range text {
		adv, _ := face.GlyphAdvance(r)
		if used+adv > room {
			return strings.TrimRight(text[:i], " ") + labelEllipsis
		}
		used += adv
	}
	return text
}

// drawLabel centres a single line inside rect.
func drawLabel(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	m := drawer.Face.Metrics()
	baseline := rect.Min.Y + (rect.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawCenteredText(drawer, text, rect.Min.X+rect.Dx()/2, baseline)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func newFiller(img *image.RGBA, clr color.Color) *rasterx.Filler {
	b := img.Bounds()
	f := rasterx.NewFiller(b.Dx(), b.Dy(), rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b))
	f.SetColor(clr)
	return f
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	r := float64(max(0, min(radius, rect.Dx()/2, rect.Dy()/2)))
	f := newFiller(img, clr)
	rasterx.AddRoundRect(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Max.X), float64(rect.Max.Y), r, r, 0, rasterx.RoundGap, f)
	f.Draw()
}

// fillPolygon fills the closed outline through pts.
func fillPolygon(img *image.RGBA, clr color.Color, pts ...pointF) {
	if len(pts) < 3 {
		return
	}
	f := newFiller(img, clr)
	f.Start(rasterx.ToFixedP(pts[0].X, pts[0].Y))
	for _, p := range pts[1:] {
		f.Line(rasterx.ToFixedP(p.X, p.Y))
	}
	f.Stop(true)
	f.Draw()
}

// blendPixel composites clr over a single pixel; off-image points are ignored.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	p := image.Point{X: x, Y: y}
	if !p.In(img.Bounds()) {
		return
	}
	imagedraw.Draw(img, image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}
