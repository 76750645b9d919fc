//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Sampling configuration
	SETTLE_DELAY      = 262144 * time.Microsecond // Panel settle time before the first frame
	SERIES_RESISTANCE = 10100                     // Divider resistor in ohms

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 10   // Converter resolution in bits (0-1023)
	ADC_SHIFT        = 6    // machine.ADC.Get is left aligned to 16 bits

	// Thermistor divider
	PIN_THERMISTOR = machine.A0

	// Piezo buzzer
	PIN_BUZZER = machine.D2
	BEEP_TIME  = 40 * time.Millisecond

	// Display
	DISPLAY_ADDRESS = 0x3C
	DISPLAY_WIDTH   = 128 // Panel size; the frame uses the top left 84x48
	DISPLAY_HEIGHT  = 64
	FRAME_WIDTH     = 84
	FRAME_HEIGHT    = 48
	I2C_FREQUENCY   = 400 * machine.KHz

	// Serial configuration
	// Each telemetry line is "dd.d\r\n", 6 bytes, sent every fourth timer
	// overflow (about once a second). 9600 baud is plenty.
	UART_BAUD_RATE = 9600
)
