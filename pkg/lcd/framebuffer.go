package lcd

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	// DefaultWidth and DefaultHeight are the dimensions of the Nokia 3310
	// panel the thermometer was designed for.
	DefaultWidth  = 84
	DefaultHeight = 48

	// BankHeight is the height of a cursor row.
	BankHeight = 8
)

// ErrNotInitialized is returned when the display is used before Initialize.
var ErrNotInitialized = errors.New("lcd: not initialized")

// Opts configures a Framebuffer.
type Opts struct {
	W int
	H int
	// Face renders WriteLargeFontString. Defaults to LargeFace.
	Face font.Face
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W: DefaultWidth,
	H: DefaultHeight,
}

// Framebuffer buffers pixels in memory and pushes the whole frame to its
// sinks on Flush.
type Framebuffer struct {
	sinks []display.Drawer
	face  font.Face

	mu          sync.Mutex
	buf         *image1bit.VerticalLSB
	splash      *image1bit.VerticalLSB
	cursor      image.Point
	initialized bool
	flushes     int
}

// New creates a Framebuffer drawing to sinks. Sinks must accept a frame of
// the framebuffer size; smaller sinks are clipped by their Draw.
func New(opts *Opts, sinks ...display.Drawer) (*Framebuffer, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("lcd: invalid size %dx%d", opts.W, opts.H)
	}

	face := opts.Face
	if face == nil {
		f, err := LargeFace()
		if err != nil {
			return nil, err
		}
		face = f
	}

	rect := image.Rect(0, 0, opts.W, opts.H)
	return &Framebuffer{
		sinks:  sinks,
		face:   face,
		buf:    image1bit.NewVerticalLSB(rect),
		splash: Splash(rect),
	}, nil
}

func (f *Framebuffer) String() string {
	return fmt.Sprintf("lcd.Framebuffer{%s, %d sinks}", f.buf.Rect.Max, len(f.sinks))
}

// Bounds returns the size of the framebuffer.
func (f *Framebuffer) Bounds() image.Rectangle {
	return f.buf.Rect
}

// Initialize prepares the buffer. It must be called before drawing.
func (f *Framebuffer) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fill(image1bit.Off)
	f.cursor = image.Point{}
	f.initialized = true
	return nil
}

// Clear blanks the display.
func (f *Framebuffer) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fill(image1bit.Off)
	return f.flush()
}

// DrawSplash draws the thermometer outline and flushes.
func (f *Framebuffer) DrawSplash() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.buf.Pix, f.splash.Pix)
	return f.flush()
}

// DrawSplashWithoutFlush replaces the buffer with the thermometer outline.
func (f *Framebuffer) DrawSplashWithoutFlush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.buf.Pix, f.splash.Pix)
}

// MoveCursor moves the text cursor.
func (f *Framebuffer) MoveCursor(col, row int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = image.Pt(col, row*BankHeight)
}

// Cursor returns the pixel position of the text cursor.
func (f *Framebuffer) Cursor() image.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// WriteLargeFontString draws s at the cursor and advances the cursor past
// it. The cursor is the top left corner of the text.
func (f *Framebuffer) WriteLargeFontString(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ascent := f.face.Metrics().Ascent
	d := font.Drawer{
		Dst:  f.buf,
		Src:  &image.Uniform{image1bit.On},
		Face: f.face,
		Dot:  fixed.Point26_6{X: fixed.I(f.cursor.X), Y: fixed.I(f.cursor.Y) + ascent},
	}
	d.DrawString(s)
	f.cursor.X = d.Dot.X.Ceil()
}

// SetPixelWithoutFlush turns a pixel on. Pixels outside the display are
// ignored.
func (f *Framebuffer) SetPixelWithoutFlush(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf.SetBit(x, y, image1bit.On)
}

// ClearPixelWithoutFlush turns a pixel off. Pixels outside the display are
// ignored.
func (f *Framebuffer) ClearPixelWithoutFlush(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf.SetBit(x, y, image1bit.Off)
}

// Pixel reports whether a pixel is on.
func (f *Framebuffer) Pixel(x, y int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return bool(f.buf.BitAt(x, y))
}

// Flush pushes the buffer to every sink.
func (f *Framebuffer) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flush()
}

// Flushes returns the number of frames pushed so far.
func (f *Framebuffer) Flushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

// Snapshot returns a copy of the buffer.
func (f *Framebuffer) Snapshot() *image1bit.VerticalLSB {
	f.mu.Lock()
	defer f.mu.Unlock()
	img := image1bit.NewVerticalLSB(f.buf.Rect)
	copy(img.Pix, f.buf.Pix)
	return img
}

// Halt halts every sink.
func (f *Framebuffer) Halt() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt %s: %w", s, err))
		}
	}
	return errors.Join(errs...)
}

func (f *Framebuffer) fill(b image1bit.Bit) {
	draw.Draw(f.buf, f.buf.Rect, &image.Uniform{b}, image.Point{}, draw.Src)
}

func (f *Framebuffer) flush() error {
	if !f.initialized {
		return ErrNotInitialized
	}
	f.flushes++

	var errs []error
	for _, s := range f.sinks {
		if err := s.Draw(f.buf.Rect, f.buf, image.Point{}); err != nil {
			errs = append(errs, fmt.Errorf("draw %s: %w", s, err))
		}
	}
	return errors.Join(errs...)
}
