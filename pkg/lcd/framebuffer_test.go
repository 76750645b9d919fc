package lcd

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type recordingSink struct {
	rect   image.Rectangle
	frames []*image1bit.VerticalLSB
	err    error
	halted bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{rect: image.Rect(0, 0, DefaultWidth, DefaultHeight)}
}

func (s *recordingSink) String() string               { return "recordingSink" }
func (s *recordingSink) Halt() error                  { s.halted = true; return nil }
func (s *recordingSink) ColorModel() color.Model      { return image1bit.BitModel }
func (s *recordingSink) Bounds() image.Rectangle      { return s.rect }
func (s *recordingSink) last() *image1bit.VerticalLSB { return s.frames[len(s.frames)-1] }

func (s *recordingSink) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	img := image1bit.NewVerticalLSB(s.rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, src.At(x+sp.X, y+sp.Y))
		}
	}
	s.frames = append(s.frames, img)
	return s.err
}

func newTestFramebuffer(t *testing.T) (*Framebuffer, *recordingSink) {
	t.Helper()
	sink := newRecordingSink()
	fb, err := New(nil, sink)
	require.NoError(t, err)
	require.NoError(t, fb.Initialize())
	return fb, sink
}

func countOn(img *image1bit.VerticalLSB, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.BitAt(x, y) {
				n++
			}
		}
	}
	return n
}

func TestNew(t *testing.T) {
	fb, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 84, 48), fb.Bounds())
	assert.Contains(t, fb.String(), "0 sinks")

	_, err = New(&Opts{W: 0, H: 48})
	assert.Error(t, err)
}

func TestFlushRequiresInitialize(t *testing.T) {
	sink := newRecordingSink()
	fb, err := New(nil, sink)
	require.NoError(t, err)

	assert.ErrorIs(t, fb.Flush(), ErrNotInitialized)
	assert.Empty(t, sink.frames)

	require.NoError(t, fb.Initialize())
	require.NoError(t, fb.Flush())
	assert.Len(t, sink.frames, 1)
	assert.Equal(t, 1, fb.Flushes())
}

func TestPixels(t *testing.T) {
	fb, sink := newTestFramebuffer(t)

	fb.SetPixelWithoutFlush(63, 47)
	fb.SetPixelWithoutFlush(64, 47)
	fb.ClearPixelWithoutFlush(64, 47)
	// Row 0 of the bar graph sits just below the panel.
	fb.SetPixelWithoutFlush(63, 48)
	fb.SetPixelWithoutFlush(-1, 0)

	assert.True(t, fb.Pixel(63, 47))
	assert.False(t, fb.Pixel(64, 47))
	assert.Empty(t, sink.frames, "pixels must not flush")

	require.NoError(t, fb.Flush())
	assert.Equal(t, 1, countOn(sink.last(), fb.Bounds()))
}

func TestSplash(t *testing.T) {
	fb, sink := newTestFramebuffer(t)

	fb.DrawSplashWithoutFlush()
	assert.Empty(t, sink.frames)
	snap := fb.Snapshot()
	assert.Greater(t, countOn(snap, fb.Bounds()), 0)

	// The splash redraw erases anything drawn since.
	fb.SetPixelWithoutFlush(0, 0)
	fb.DrawSplashWithoutFlush()
	assert.Equal(t, snap.Pix, fb.Snapshot().Pix)

	require.NoError(t, fb.DrawSplash())
	require.Len(t, sink.frames, 1)
	assert.Equal(t, snap.Pix, sink.last().Pix)
}

func TestClear(t *testing.T) {
	fb, sink := newTestFramebuffer(t)
	require.NoError(t, fb.DrawSplash())
	require.NoError(t, fb.Clear())
	require.Len(t, sink.frames, 2)
	assert.Zero(t, countOn(sink.last(), fb.Bounds()))
}

func TestWriteLargeFontString(t *testing.T) {
	fb, _ := newTestFramebuffer(t)

	fb.MoveCursor(0, 1)
	assert.Equal(t, image.Pt(0, 8), fb.Cursor())

	fb.WriteLargeFontString("78.4")
	end := fb.Cursor()
	assert.Greater(t, end.X, 20)
	assert.Less(t, end.X, 60, "digits must leave room for the bar graph")
	assert.Equal(t, 8, end.Y)

	snap := fb.Snapshot()
	assert.Zero(t, countOn(snap, image.Rect(0, 0, DefaultWidth, 8)), "nothing above the cursor bank")
	assert.Greater(t, countOn(snap, image.Rect(0, 8, end.X, DefaultHeight)), 20)
}

func TestSinkErrors(t *testing.T) {
	sinkErr := errors.New("bus busy")
	bad := newRecordingSink()
	bad.err = sinkErr
	good := newRecordingSink()

	fb, err := New(nil, bad, good)
	require.NoError(t, err)
	require.NoError(t, fb.Initialize())

	err = fb.Flush()
	assert.ErrorIs(t, err, sinkErr)
	assert.Len(t, good.frames, 1, "a failing sink must not starve the others")

	require.NoError(t, fb.Halt())
	assert.True(t, bad.halted)
	assert.True(t, good.halted)
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&ConsoleOpts{W: 4, H: 2, Out: &out})
	assert.Equal(t, image.Rect(0, 0, 4, 2), c.Bounds())

	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 4, 2))
	img.SetBit(1, 1, image1bit.On)
	require.NoError(t, c.Draw(c.Bounds(), img, image.Point{}))

	assert.True(t, bool(c.pixels.BitAt(1, 1)))
	assert.False(t, bool(c.pixels.BitAt(0, 0)))
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "\033[H"))
	assert.Equal(t, 2, strings.Count(s, "\n"))

	out.Reset()
	require.NoError(t, c.Halt())
	assert.Equal(t, "\033[0m\n", out.String())
}
