package link

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
)

// Interrupter runs a function at interrupt priority.
type Interrupter interface {
	Interrupt(fn func())
}

// Receiver drains the receive side of the serial port. The appliance has
// no command protocol, so every byte is read and discarded.
type Receiver struct {
	src       io.Reader
	irq       Interrupter
	discarded atomic.Uint64
}

// NewReceiver creates a Receiver reading from src.
func NewReceiver(src io.Reader, irq Interrupter) *Receiver {
	return &Receiver{src: src, irq: irq}
}

// Discarded returns the number of bytes dropped so far.
func (r *Receiver) Discarded() uint64 {
	return r.discarded.Load()
}

// Run drains src until ctx is cancelled or src is exhausted.
func (r *Receiver) Run(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("Panic in receiver: %v", p)
			err = errors.New("link: receiver panicked")
		}
	}()

	buf := make([]byte, 16)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.src.Read(buf)
		if n > 0 {
			r.irq.Interrupt(func() {
				r.discarded.Add(uint64(n))
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
