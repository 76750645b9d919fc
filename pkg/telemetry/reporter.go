// Package telemetry streams the current temperature over the serial link.
package telemetry

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/itohio/gothermo/pkg/readout"
	"github.com/itohio/gothermo/pkg/thermistor"
)

// Decimation is the number of timer ticks per emitted line.
const Decimation = 4

// LineLen is the length of an emitted line: the readout followed by CR LF.
const LineLen = readout.Len + 2

// Link is the transmit side of the serial port. WriteByte returns once the
// byte has been shifted out.
type Link interface {
	WriteByte(c byte) error
}

// Mirror receives a copy of every transmitted line.
type Mirror interface {
	Publish(line []byte) error
}

// Reporter emits the current temperature on every Decimation-th tick.
// Tick must not be called concurrently; the tick counter belongs to the
// reporter alone.
type Reporter struct {
	link    Link
	cell    *thermistor.Cell
	mirrors []Mirror

	count   uint8
	emitted atomic.Uint64
}

// NewReporter creates a Reporter that reads temperatures from cell.
func NewReporter(link Link, cell *thermistor.Cell, mirrors ...Mirror) *Reporter {
	return &Reporter{
		link:    link,
		cell:    cell,
		mirrors: mirrors,
	}
}

// Tick counts a timer overflow and transmits a line when the count is a
// multiple of Decimation. It reports whether a line was emitted.
func (r *Reporter) Tick() (bool, error) {
	r.count++
	if r.count%Decimation != 0 {
		return false, nil
	}
	return true, r.emit()
}

// Emitted returns the number of lines sent so far.
func (r *Reporter) Emitted() uint64 {
	return r.emitted.Load()
}

// Handler returns a timer handler that logs transmit failures.
func (r *Reporter) Handler() func() {
	return func() {
		if _, err := r.Tick(); err != nil {
			log.Printf("telemetry: %v", err)
		}
	}
}

func (r *Reporter) emit() error {
	line := Line(r.cell.Load())
	for _, b := range line {
		if err := r.link.WriteByte(b); err != nil {
			return fmt.Errorf("transmit %q: %w", b, err)
		}
	}
	r.emitted.Add(1)

	for _, m := range r.mirrors {
		if err := m.Publish(line[:]); err != nil {
			log.Printf("telemetry mirror: %v", err)
		}
	}
	return nil
}

// Line renders t as a serial line. Invalid temperatures render as the
// blank readout.
func Line(t thermistor.Temperature) [LineLen]byte {
	ro, _ := readout.Format(t.Fahrenheit())
	var line [LineLen]byte
	copy(line[:], ro[:])
	line[readout.Len] = '\r'
	line[readout.Len+1] = '\n'
	return line
}

// Discard is a Link that drops every byte. It lets the reporter feed its
// mirrors when no serial port is attached.
var Discard Link = discard{}

type discard struct{}

func (discard) WriteByte(byte) error { return nil }
