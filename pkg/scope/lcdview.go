package scope

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

var (
	lcdOn  = color.RGBA{R: 0x20, G: 0x30, B: 0x20, A: 255}
	lcdOff = color.RGBA{R: 0x9c, G: 0xb8, B: 0x8c, A: 255}
)

// LCDView mirrors the appliance display in a window. It is a
// display.Drawer, so it can be used as a framebuffer sink.
type LCDView struct {
	widget.BaseWidget

	rect   image.Rectangle
	raster *canvas.Image
	// do runs UI updates on the Fyne main thread.
	do func(func())
}

// NewLCDView creates a view of a w×h panel drawn scale times larger.
func NewLCDView(w, h int, scale float32) *LCDView {
	rect := image.Rect(0, 0, w, h)
	raster := canvas.NewImageFromImage(blank(rect))
	raster.ScaleMode = canvas.ImageScalePixels
	raster.FillMode = canvas.ImageFillContain
	raster.SetMinSize(fyne.NewSize(float32(w)*scale, float32(h)*scale))

	v := &LCDView{
		rect:   rect,
		raster: raster,
		do:     fyne.Do,
	}
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer creates the widget renderer.
func (v *LCDView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

func (v *LCDView) String() string {
	return fmt.Sprintf("LCDView{%s}", v.rect.Max)
}

// Halt implements conn.Resource.
func (v *LCDView) Halt() error {
	img := blank(v.rect)
	v.do(func() {
		v.raster.Image = img
		v.raster.Refresh()
	})
	return nil
}

// ColorModel implements display.Drawer.
func (v *LCDView) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (v *LCDView) Bounds() image.Rectangle {
	return v.rect
}

// Draw implements display.Drawer. The frame is copied before returning.
func (v *LCDView) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	img := blank(v.rect)
	r = r.Intersect(v.rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(x-r.Min.X+sp.X, y-r.Min.Y+sp.Y)
			if image1bit.BitModel.Convert(c).(image1bit.Bit) {
				img.SetRGBA(x, y, lcdOn)
			}
		}
	}
	v.do(func() {
		v.raster.Image = img
		v.raster.Refresh()
	})
	return nil
}

func blank(r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, lcdOff)
		}
	}
	return img
}

var _ display.Drawer = &LCDView{}
