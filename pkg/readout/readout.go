// Package readout renders a temperature as the four character fixed-point
// string shown on the display and sent over the serial link.
package readout

import (
	"errors"
	"math"
)

// Len is the number of characters in a Readout.
const Len = 4

// maxScaled is the largest tenths value the readout can show (99.9).
const maxScaled = 999

// ErrDisplayRangeExceeded is returned when the value needs more digits
// than the readout holds, or is not a number at all.
var ErrDisplayRangeExceeded = errors.New("readout: value exceeds display range")

// Readout is a fixed width "DD.D" string.
type Readout [Len]byte

// Blank is shown when no reading is available.
var Blank = Readout{'-', '-', '.', '-'}

func (r Readout) String() string {
	return string(r[:])
}

// Bytes returns the readout characters.
func (r Readout) Bytes() []byte {
	return r[:]
}

// Format renders t with one decimal place.
//
// The value is scaled by ten and truncated toward zero; it is bumped up by
// one when the discarded fraction is at least one half. For negative
// values the fraction is negative, so they are never bumped. The sign is
// then dropped: -5.0 renders as "05.0". Only the tens, ones and tenths
// digits are kept; values of 100 and above still render (with the
// hundreds digit lost) but ErrDisplayRangeExceeded is returned alongside.
func Format(t float64) (Readout, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return Blank, ErrDisplayRangeExceeded
	}

	var err error
	scaled := t * 10
	if math.Abs(scaled) >= maxScaled+1 {
		// Only the last three digits are shown. Wrapping before the integer
		// conversion keeps it from saturating.
		scaled = math.Mod(scaled, maxScaled+1)
		err = ErrDisplayRangeExceeded
	}

	n := int64(scaled)
	if 0.5 <= scaled-float64(n) {
		n++
	}
	if n < 0 {
		n = -n
	}
	if n > maxScaled {
		err = ErrDisplayRangeExceeded
	}

	var r Readout
	r[2] = '.'
	r[3] = byte(n%10) | '0'
	n /= 10
	r[1] = byte(n%10) | '0'
	n /= 10
	r[0] = byte(n%10) | '0'
	return r, err
}
