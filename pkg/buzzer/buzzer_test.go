package buzzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestBuzzer_Beep(t *testing.T) {
	pin := &gpiotest.Pin{N: "PD7"}
	b := New(pin, 0)

	var during gpio.Level
	var slept time.Duration
	b.sleep = func(d time.Duration) {
		during = pin.Read()
		slept = d
	}

	require.NoError(t, b.Beep())
	assert.Equal(t, gpio.High, during)
	assert.Equal(t, DefaultDuration, slept)
	assert.Equal(t, gpio.Low, pin.Read())
}

func TestBuzzer_Halt(t *testing.T) {
	pin := &gpiotest.Pin{N: "PD7", L: gpio.High}
	b := New(pin, time.Millisecond)

	require.NoError(t, b.Halt())
	assert.Equal(t, gpio.Low, pin.Read())
}
