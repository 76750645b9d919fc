// Package thermometer runs the sampling and rendering loop of the
// appliance: sample the thermistor, convert, show the digits and the bar
// graph, then idle until the next timer overflow.
package thermometer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itohio/gothermo/pkg/bargraph"
	"github.com/itohio/gothermo/pkg/lcd"
	"github.com/itohio/gothermo/pkg/readout"
	"github.com/itohio/gothermo/pkg/thermistor"
)

const (
	// DefaultSettleDelay is the wait between display initialization and
	// the first clear.
	DefaultSettleDelay = 100 * time.Millisecond

	// Position of the digits: pixel column 0, second bank.
	digitsCol = 0
	digitsRow = 1
)

// Coordinator provides the critical section and the idle sleep.
type Coordinator interface {
	Disable()
	Enable()
	// Sleep is called with interrupts disabled and returns with them
	// enabled.
	Sleep(ctx context.Context) error
}

// Sampler takes a raw reading and powers the converter down afterwards.
type Sampler interface {
	Sample(ctx context.Context) (int, error)
	Disable() error
}

// Beeper sounds the startup beep.
type Beeper interface {
	Beep() error
}

// Opts configures a Loop.
type Opts struct {
	// SeriesResistance of the divider in ohms. Defaults to
	// thermistor.SeriesResistance.
	SeriesResistance float64
	// SettleDelay defaults to DefaultSettleDelay. Negative disables it.
	SettleDelay time.Duration
	// Beeper is optional.
	Beeper Beeper
}

// Reading is the outcome of one cycle.
type Reading struct {
	Time        time.Time
	Raw         int
	Temperature thermistor.Temperature
	Readout     readout.Readout
	LitRows     int
	Err         error
}

// Loop is the main loop of the thermometer. The current temperature is
// published to a thermistor.Cell which interrupt handlers may read at any
// time.
type Loop struct {
	coord   Coordinator
	sampler Sampler
	display lcd.Display
	cell    *thermistor.Cell
	beeper  Beeper

	seriesOhms float64
	settle     time.Duration
	now        func() time.Time
	wait       func(ctx context.Context, d time.Duration) error

	callbacks []func(Reading)
	cbMu      sync.RWMutex

	// fault is the message of the last logged failure, empty when healthy.
	fault  string
	cycles atomic.Uint64
}

// New creates a Loop.
func New(coord Coordinator, sampler Sampler, display lcd.Display, cell *thermistor.Cell, opts *Opts) *Loop {
	if opts == nil {
		opts = &Opts{}
	}
	l := &Loop{
		coord:      coord,
		sampler:    sampler,
		display:    display,
		cell:       cell,
		beeper:     opts.Beeper,
		seriesOhms: opts.SeriesResistance,
		settle:     opts.SettleDelay,
		now:        time.Now,
		wait:       sleepContext,
	}
	if l.seriesOhms == 0 {
		l.seriesOhms = thermistor.SeriesResistance
	}
	if l.settle == 0 {
		l.settle = DefaultSettleDelay
	}
	return l
}

// OnCycle registers a callback receiving every Reading. Callbacks run on
// the loop goroutine with interrupts enabled and must not block.
func (l *Loop) OnCycle(callback func(Reading)) {
	l.cbMu.Lock()
	defer l.cbMu.Unlock()
	l.callbacks = append(l.callbacks, callback)
}

// Cycles returns the number of completed cycles.
func (l *Loop) Cycles() uint64 {
	return l.cycles.Load()
}

// Start brings the display up, shows the splash screen and beeps.
func (l *Loop) Start(ctx context.Context) error {
	if err := l.display.Initialize(); err != nil {
		return fmt.Errorf("initialize display: %w", err)
	}
	if l.settle > 0 {
		if err := l.wait(ctx, l.settle); err != nil {
			return err
		}
	}
	if err := l.display.Clear(); err != nil {
		return fmt.Errorf("clear display: %w", err)
	}
	if err := l.display.DrawSplash(); err != nil {
		return fmt.Errorf("draw splash: %w", err)
	}
	if l.beeper != nil {
		if err := l.beeper.Beep(); err != nil {
			log.Printf("thermometer: beep: %v", err)
		}
	}
	return nil
}

// Run performs the startup sequence and then samples once per timer
// overflow until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Start(ctx); err != nil {
		return err
	}
	for {
		l.Cycle(ctx)

		l.coord.Disable()
		if err := l.coord.Sleep(ctx); err != nil {
			return err
		}
	}
}

// Cycle samples, converts and renders once with interrupts disabled, and
// notifies the callbacks. Failures never stop the loop: they are reported
// in the Reading and the display shows a blank readout.
func (l *Loop) Cycle(ctx context.Context) Reading {
	l.coord.Disable()
	r := l.step(ctx)
	l.coord.Enable()

	l.cycles.Add(1)
	l.report(r.Err)
	l.notify(r)
	return r
}

func (l *Loop) step(ctx context.Context) Reading {
	r := Reading{Time: l.now()}

	raw, err := l.sampler.Sample(ctx)
	r.Raw = raw
	t := thermistor.Invalid
	if err == nil {
		t, err = thermistor.Convert(raw, l.seriesOhms)
	}
	l.cell.Store(t)
	r.Temperature = t

	ro, fmtErr := readout.Format(t.Fahrenheit())
	r.Readout = ro
	if err == nil {
		err = fmtErr
	}

	l.display.DrawSplashWithoutFlush()
	l.display.MoveCursor(digitsCol, digitsRow)
	l.display.WriteLargeFontString(ro.String())
	r.LitRows = bargraph.Render(l.display, t)
	flushErr := l.display.Flush()
	if flushErr != nil {
		flushErr = fmt.Errorf("flush display: %w", flushErr)
	}

	disableErr := l.sampler.Disable()
	if disableErr != nil {
		disableErr = fmt.Errorf("disable sensor: %w", disableErr)
	}

	r.Err = errors.Join(err, flushErr, disableErr)
	return r
}

// report logs failures when they change so a disconnected probe does not
// flood the log.
func (l *Loop) report(err error) {
	switch {
	case err == nil && l.fault != "":
		log.Printf("thermometer: sensor recovered")
		l.fault = ""
	case err != nil && err.Error() != l.fault:
		l.fault = err.Error()
		log.Printf("thermometer: %v", err)
	}
}

func (l *Loop) notify(r Reading) {
	l.cbMu.RLock()
	defer l.cbMu.RUnlock()
	for _, cb := range l.callbacks {
		cb(r)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
