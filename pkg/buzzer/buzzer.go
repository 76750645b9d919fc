// Package buzzer drives the piezo beeper of the thermometer.
package buzzer

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DefaultDuration is the length of a beep.
const DefaultDuration = 40 * time.Millisecond

// Buzzer is a piezo buzzer on a GPIO pin.
type Buzzer struct {
	pin      gpio.PinOut
	duration time.Duration
	sleep    func(time.Duration)
}

// New returns a Buzzer on pin.
func New(pin gpio.PinOut, duration time.Duration) *Buzzer {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Buzzer{pin: pin, duration: duration, sleep: time.Sleep}
}

func (b *Buzzer) String() string {
	return fmt.Sprintf("Buzzer{%s}", b.pin)
}

// Beep drives the pin high for the configured duration.
func (b *Buzzer) Beep() error {
	if err := b.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("start beep: %w", err)
	}
	b.sleep(b.duration)
	if err := b.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("stop beep: %w", err)
	}
	return nil
}

// Halt silences the buzzer.
func (b *Buzzer) Halt() error {
	return b.pin.Out(gpio.Low)
}
