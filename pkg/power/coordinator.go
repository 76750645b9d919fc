// Package power serializes interrupt handlers against the main loop and
// implements the timer driven idle sleep of the thermometer.
//
// The model follows a single core microcontroller: while the main loop has
// interrupts disabled, handlers are held off until it enables them again;
// handlers run to completion one at a time; the loop sleeps with interrupts
// enabled and only a timer overflow wakes it.
package power

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the overflow period of an 8-bit timer clocked at
// 1 MHz through a /1024 prescaler.
const DefaultInterval = 262144 * time.Microsecond

// Coordinator owns the wake-up timer and the interrupt enable flag.
type Coordinator struct {
	interval time.Duration

	// mu is held while interrupts are disabled or a handler is running.
	mu       sync.Mutex
	handlers []func()
	sleeper  chan struct{}

	// epoch changes every time the timer is restarted; an overflow raised
	// under an older epoch runs its handlers but does not wake the loop.
	epoch  atomic.Uint64
	resets chan struct{}
	ticks  atomic.Uint64
}

// New creates a Coordinator with the given timer period.
func New(interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		interval: interval,
		resets:   make(chan struct{}, 1),
	}
}

// Interval returns the timer period.
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// OnTick registers a handler run on every timer overflow.
func (c *Coordinator) OnTick(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Disable disables interrupts. It blocks while a handler is running.
func (c *Coordinator) Disable() {
	c.mu.Lock()
}

// Enable re-enables interrupts. Held off handlers run afterwards.
func (c *Coordinator) Enable() {
	c.mu.Unlock()
}

// Interrupt runs fn at interrupt priority: never concurrently with another
// handler and never while interrupts are disabled. It does not wake a
// sleeping loop.
func (c *Coordinator) Interrupt(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Tick raises a timer overflow.
func (c *Coordinator) Tick() {
	c.raise(c.epoch.Load())
}

// Ticks returns the number of overflows handled so far.
func (c *Coordinator) Ticks() uint64 {
	return c.ticks.Load()
}

func (c *Coordinator) raise(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ticks.Add(1)
	for _, h := range c.handlers {
		h()
	}
	if c.sleeper != nil && epoch == c.epoch.Load() {
		close(c.sleeper)
		c.sleeper = nil
	}
}

// Sleep restarts the timer, enables interrupts and idles until the next
// overflow. It must be called with interrupts disabled and returns with
// interrupts enabled.
func (c *Coordinator) Sleep(ctx context.Context) error {
	wake := make(chan struct{})
	c.sleeper = wake
	c.epoch.Add(1)
	select {
	case c.resets <- struct{}{}:
	default:
	}
	c.mu.Unlock()

	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		if c.sleeper == wake {
			c.sleeper = nil
		}
		c.mu.Unlock()
		return ctx.Err()
	}
}

// Run drives the timer until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.resets:
			ticker.Reset(c.interval)
		case <-ticker.C:
			c.overflow(ticker)
		}
	}
}

// overflow handles a ticker expiry. A restart requested since the ticker
// fired wins: the overflow is dropped and the timer restarted, so the
// sleeper still waits a full period. It reports whether that happened.
func (c *Coordinator) overflow(ticker *time.Ticker) bool {
	select {
	case <-c.resets:
		ticker.Reset(c.interval)
		return true
	default:
	}
	c.raise(c.epoch.Load())
	return false
}
