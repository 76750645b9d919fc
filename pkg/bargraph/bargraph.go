// Package bargraph draws the thermometer column and its bulb.
package bargraph

import (
	"math"

	"github.com/itohio/gothermo/pkg/thermistor"
)

const (
	// Rows is the height of the column in pixels.
	Rows = 40
	// Floor is the temperature at the bottom of the column in °F.
	Floor = 60.0
	// RowsPerDegree is the column resolution, 0.5°F per row.
	RowsPerDegree = 2

	// ColumnX is the left edge of the column.
	ColumnX = 63
	// ColumnWidth is the width of the column.
	ColumnWidth = 5
	// BaseY is the screen row of row 0. Rows grow upwards.
	BaseY = 48
)

// PixelDrawer is the part of the display the bar graph draws on.
// Pixels are buffered until the display is flushed.
type PixelDrawer interface {
	SetPixelWithoutFlush(x, y int)
	ClearPixelWithoutFlush(x, y int)
}

type run struct {
	x, width int
}

// bulb returns the horizontal run of a lit row inside the bulb.
func bulb(row int) (run, bool) {
	switch {
	case row > 2 && row < 7:
		return run{x: 60, width: 11}, true
	case row > 2 && row < 9:
		return run{x: 61, width: 9}, true
	case row < 10:
		return run{x: 62, width: 7}, true
	}
	return run{}, false
}

// Lit reports whether row is lit at temperature t. Invalid temperatures
// light nothing.
func Lit(t thermistor.Temperature, row int) bool {
	if !t.Valid() {
		return false
	}
	return (t.Fahrenheit()-Floor)*RowsPerDegree > float64(row)
}

// LitRows returns the number of lit rows at temperature t.
func LitRows(t thermistor.Temperature) int {
	if !t.Valid() {
		return 0
	}
	n := math.Ceil((t.Fahrenheit() - Floor) * RowsPerDegree)
	switch {
	case n < 0:
		return 0
	case n > Rows:
		return Rows
	}
	return int(n)
}

// Render draws the column for t without flushing and returns the number
// of lit rows. Lit rows inside the bulb are widened; clear rows only erase
// the column itself.
func Render(d PixelDrawer, t thermistor.Temperature) int {
	lit := 0
	for row := 0; row < Rows; row++ {
		y := BaseY - row
		if !Lit(t, row) {
			for x := ColumnX; x < ColumnX+ColumnWidth; x++ {
				d.ClearPixelWithoutFlush(x, y)
			}
			continue
		}

		lit++
		for x := ColumnX; x < ColumnX+ColumnWidth; x++ {
			d.SetPixelWithoutFlush(x, y)
		}
		if r, ok := bulb(row); ok {
			for x := r.x; x < r.x+r.width; x++ {
				d.SetPixelWithoutFlush(x, y)
			}
		}
	}
	return lit
}
