package renderer

import (
	"fmt"
	"image"
	"image/color"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const labelPadding = 4

// DrawLabel writes text in the top left corner of img over a dark backdrop
// so it stays legible on bright backgrounds.
func DrawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	height := face.Metrics().Height.Ceil()

	backdrop := image.Rect(0, 0, width+2*labelPadding, height+2*labelPadding).Intersect(img.Bounds())
	xdraw.Draw(img, backdrop, image.NewUniform(color.RGBA{A: 160}), image.Point{}, xdraw.Over)

	d.Dot = fixed.P(labelPadding, labelPadding+face.Metrics().Ascent.Ceil())
	d.DrawString(text)
}

// Summary formats the statistics as a one line caption.
func (s RenderStats) Summary() string {
	return fmt.Sprintf("%d px  %d spp  %.1f Mrays/s  %.0f%% hit  %v",
		s.TotalPixels, s.SamplesPerPixel, s.RaysPerSecond()/1e6, 100*s.HitRatio(), s.Elapsed.Round(time.Millisecond))
}
