package bargraph

import (
	"image"
	"math"
	"testing"

	"github.com/itohio/gothermo/pkg/thermistor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type canvas struct {
	set     map[image.Point]bool
	cleared map[image.Point]bool
}

func newCanvas() *canvas {
	return &canvas{set: map[image.Point]bool{}, cleared: map[image.Point]bool{}}
}

func (c *canvas) SetPixelWithoutFlush(x, y int) {
	c.set[image.Pt(x, y)] = true
}

func (c *canvas) ClearPixelWithoutFlush(x, y int) {
	c.cleared[image.Pt(x, y)] = true
}

// span returns the leftmost x and the width of the pixels set on screen row y.
func (c *canvas) span(y int) (int, int) {
	minX, maxX := math.MaxInt, math.MinInt
	for p := range c.set {
		if p.Y != y {
			continue
		}
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
	}
	if minX > maxX {
		return 0, 0
	}
	return minX, maxX - minX + 1
}

func TestRenderSeventyDegrees(t *testing.T) {
	c := newCanvas()
	lit := Render(c, 70.0)
	assert.Equal(t, 20, lit)

	for row := 0; row < Rows; row++ {
		y := BaseY - row
		for x := ColumnX; x < ColumnX+ColumnWidth; x++ {
			p := image.Pt(x, y)
			if row < 20 {
				assert.True(t, c.set[p], "row %d x %d should be set", row, x)
				assert.False(t, c.cleared[p], "row %d x %d should not be cleared", row, x)
			} else {
				assert.False(t, c.set[p], "row %d x %d should not be set", row, x)
				assert.True(t, c.cleared[p], "row %d x %d should be cleared", row, x)
			}
		}
	}
}

func TestRenderBulb(t *testing.T) {
	c := newCanvas()
	Render(c, 80.0)

	tests := []struct {
		row   int
		x     int
		width int
	}{
		{0, 62, 7},
		{2, 62, 7},
		{3, 60, 11},
		{6, 60, 11},
		{7, 61, 9},
		{8, 61, 9},
		{9, 62, 7},
		{10, ColumnX, ColumnWidth},
		{39, ColumnX, ColumnWidth},
	}
	for _, tt := range tests {
		x, width := c.span(BaseY - tt.row)
		assert.Equal(t, tt.x, x, "row %d", tt.row)
		assert.Equal(t, tt.width, width, "row %d", tt.row)
	}
}

func TestRenderInvalid(t *testing.T) {
	c := newCanvas()
	lit := Render(c, thermistor.Invalid)
	assert.Zero(t, lit)
	assert.Empty(t, c.set)
	assert.Len(t, c.cleared, Rows*ColumnWidth)
}

func TestRenderBelowFloor(t *testing.T) {
	c := newCanvas()
	assert.Zero(t, Render(c, 40.0))
	assert.Empty(t, c.set)
}

func TestLitRows(t *testing.T) {
	tests := []struct {
		name string
		temp thermistor.Temperature
		want int
	}{
		{"below floor", 50, 0},
		{"floor", 60, 0},
		{"just above floor", 60.1, 1},
		{"half degree", 60.5, 1},
		{"seventy", 70, 20},
		{"seventy and a bit", 70.2, 21},
		{"top", 80, 40},
		{"above top", 95, 40},
		{"invalid", thermistor.Invalid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LitRows(tt.temp)
			assert.Equal(t, tt.want, got)

			c := newCanvas()
			require.Equal(t, got, Render(c, tt.temp), "LitRows must agree with Render")
		})
	}
}

func TestLit(t *testing.T) {
	assert.True(t, Lit(70, 19))
	assert.False(t, Lit(70, 20))
	assert.False(t, Lit(thermistor.Invalid, 0))
}
