package thermistor

import (
	"math"
	"sync/atomic"
)

// Cell holds the current temperature. It has a single writer (the sampling
// loop) and any number of readers running at interrupt priority; loads
// never observe a partially written value.
type Cell struct {
	bits atomic.Uint64
}

// NewCell returns a Cell holding Invalid.
func NewCell() *Cell {
	c := &Cell{}
	c.Store(Invalid)
	return c
}

// Store replaces the current temperature.
func (c *Cell) Store(t Temperature) {
	c.bits.Store(math.Float64bits(float64(t)))
}

// Load returns the current temperature. A zero Cell loads as 0°F.
func (c *Cell) Load() Temperature {
	return Temperature(math.Float64frombits(c.bits.Load()))
}
