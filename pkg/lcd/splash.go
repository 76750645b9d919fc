package lcd

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Outline of the thermometer, sized for the bar graph drawn by the
// sampling loop: a tube around x 62..68 ending in a round bulb at the
// bottom of the panel.
const (
	tubeLeft   = 61.5
	tubeTop    = 4.5
	tubeWidth  = 7
	tubeRadius = 3.5
	bulbX      = 65.5
	bulbY      = 42.5
	bulbRadius = 7
	labelX     = 2
	labelY     = 44
)

// Splash renders the thermometer outline and the unit label into a 1-bit
// image of size r.
func Splash(r image.Rectangle) *image1bit.VerticalLSB {
	dc := gg.NewContext(r.Dx(), r.Dy())
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(tubeLeft, tubeTop, tubeWidth, bulbY-tubeTop, tubeRadius)
	dc.Stroke()
	dc.DrawCircle(bulbX, bulbY, bulbRadius)
	dc.Stroke()

	// Ticks every 5°F on the left of the tube.
	for y := 48.5; y > tubeTop; y -= 10 {
		dc.DrawLine(tubeLeft-3, y, tubeLeft, y)
	}
	dc.Stroke()

	dc.SetFontFace(SmallFace())
	dc.DrawString("deg F", labelX, labelY)

	img := image1bit.NewVerticalLSB(r)
	draw.Draw(img, r, dc.Image(), image.Point{}, draw.Src)
	return img
}
