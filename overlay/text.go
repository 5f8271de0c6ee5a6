package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	padding    = 6
	lineHeight = 15
)

var (
	panelColor = color.RGBA{R: 16, G: 16, B: 20, A: 190}
	textColor  = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// Rasterize draws lines onto a translucent panel sized to fit them.
// Rows run top to bottom.
func Rasterize(lines []string) *image.RGBA {
	face := basicfont.Face7x13

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	bounds := image.Rect(0, 0, width+2*padding, len(lines)*lineHeight+2*padding)
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.NewUniform(panelColor), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	for i, l := range lines {
		d.Dot = fixed.P(padding, padding+i*lineHeight+ascent)
		d.DrawString(l)
	}
	return img
}
