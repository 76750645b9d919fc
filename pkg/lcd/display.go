// Package lcd implements the pixel display of the thermometer on top of a
// 1-bit framebuffer. The framebuffer is pushed to one or more periph
// display.Drawer sinks on Flush: an SSD1306 panel, the terminal or the
// simulator window.
package lcd

// Display is the pixel display used by the sampling loop. Methods named
// WithoutFlush only touch the buffer.
type Display interface {
	Initialize() error
	Clear() error
	DrawSplash() error
	DrawSplashWithoutFlush()
	// MoveCursor moves the text cursor to pixel column col and 8 pixel
	// bank row.
	MoveCursor(col, row int)
	WriteLargeFontString(s string)
	SetPixelWithoutFlush(x, y int)
	ClearPixelWithoutFlush(x, y int)
	Flush() error
}

// Ensure Framebuffer implements Display.
var _ Display = (*Framebuffer)(nil)
