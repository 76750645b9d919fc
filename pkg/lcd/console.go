package lcd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ConsoleOpts represents the options of a Console.
type ConsoleOpts struct {
	W       int
	H       int
	Palette *ansi256.Palette
	// Out defaults to a colorable stdout.
	Out io.Writer
	// On is the color of lit pixels.
	On color.Color
}

// Console is a display.Drawer that prints the panel to a terminal using
// ANSI colors, one block per pixel.
type Console struct {
	w       io.Writer
	rect    image.Rectangle
	palette ansi256.Palette
	on      color.Color
	off     color.Color

	pixels *image1bit.VerticalLSB
	buf    bytes.Buffer
}

// NewConsole returns a Console of the given size.
func NewConsole(opts *ConsoleOpts) *Console {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	on := opts.On
	if on == nil {
		on = color.NRGBA{R: 0x20, G: 0x30, B: 0x20, A: 255}
	}
	rect := image.Rect(0, 0, opts.W, opts.H)
	return &Console{
		w:       w,
		rect:    rect,
		palette: *p,
		on:      on,
		off:     color.NRGBA{R: 0x9c, G: 0xb8, B: 0x8c, A: 255},
		pixels:  image1bit.NewVerticalLSB(rect),
	}
}

func (c *Console) String() string {
	return fmt.Sprintf("Console{%s}", c.rect.Max)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (c *Console) Halt() error {
	_, err := c.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (c *Console) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (c *Console) Bounds() image.Rectangle {
	return c.rect
}

// Draw implements display.Drawer.
func (c *Console) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(c.rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(x-r.Min.X+sp.X, y-r.Min.Y+sp.Y)
			bit := image1bit.BitModel.Convert(src.At(p.X, p.Y)).(image1bit.Bit)
			c.pixels.SetBit(x, y, bit)
		}
	}
	_, err := c.refresh()
	return err
}

func (c *Console) refresh() (int, error) {
	c.buf.Reset()
	// Move home so consecutive frames overwrite each other.
	_, _ = c.buf.WriteString("\033[H\033[0m")
	for y := c.rect.Min.Y; y < c.rect.Max.Y; y++ {
		for x := c.rect.Min.X; x < c.rect.Max.X; x++ {
			col := c.off
			if c.pixels.BitAt(x, y) {
				col = c.on
			}
			_, _ = io.WriteString(&c.buf, c.palette.Block(color.NRGBAModel.Convert(col).(color.NRGBA)))
		}
		_, _ = c.buf.WriteString("\033[0m\n")
	}
	n, err := c.buf.WriteTo(c.w)
	return int(n), err
}

var _ display.Drawer = &Console{}
var _ fmt.Stringer = &Console{}
