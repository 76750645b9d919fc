// Package thermistor converts raw divider readings of an NTC thermistor into
// temperatures.
package thermistor

import (
	"errors"
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

const (
	// FullScale is the reading that maps to the full supply voltage. A
	// 10-bit converter never produces it; it is reserved to mean that the
	// probe is disconnected.
	FullScale = 1024

	// SeriesResistance is the value (in ohms) of the resistor in series
	// with the thermistor on the appliance board.
	SeriesResistance = 10100.0

	// ReferenceResistance is the thermistor resistance at 25°C.
	ReferenceResistance = 10000.0

	// KelvinOffset is the Kelvin to Celsius offset burnt into the device
	// calibration. It is 272.15 rather than 273.15.
	KelvinOffset = 272.15
)

// Steinhart-Hart coefficients for the Vishay NTCLE100E3103JB0.
const (
	CoeffA = 3.354016e-3
	CoeffB = 2.56985e-4
	CoeffC = 2.620131e-6
	CoeffD = 6.383091e-8
)

var (
	// ErrSensorDisconnected is returned when the reading equals FullScale.
	ErrSensorDisconnected = errors.New("thermistor: sensor disconnected")
	// ErrSensorOutOfRange is returned for readings the divider equation
	// cannot resolve (zero, negative or above FullScale).
	ErrSensorOutOfRange = errors.New("thermistor: reading out of range")
)

// Temperature is a temperature in degrees Fahrenheit.
type Temperature float64

// Invalid is the temperature stored when no valid reading exists.
var Invalid = Temperature(math.NaN())

// Valid reports whether t holds a real reading.
func (t Temperature) Valid() bool {
	return !math.IsNaN(float64(t)) && !math.IsInf(float64(t), 0)
}

// Fahrenheit returns t as a plain float64.
func (t Temperature) Fahrenheit() float64 {
	return float64(t)
}

// Celsius converts t to degrees Celsius.
func (t Temperature) Celsius() float64 {
	return (float64(t) - 32) * 5 / 9
}

// Physic converts t to a periph temperature.
func (t Temperature) Physic() physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(t.Celsius()*float64(physic.Celsius))
}

func (t Temperature) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("%.2f°F/%s", float64(t), t.Physic())
}

// Resistance returns the thermistor resistance for a raw reading with the
// thermistor on the top leg of the divider.
func Resistance(raw int, seriesOhms float64) (float64, error) {
	if raw == FullScale {
		return 0, ErrSensorDisconnected
	}
	if raw <= 0 || raw > FullScale {
		return 0, fmt.Errorf("%w: raw=%d", ErrSensorOutOfRange, raw)
	}
	if seriesOhms <= 0 {
		return 0, fmt.Errorf("%w: series resistance %g", ErrSensorOutOfRange, seriesOhms)
	}
	x := float64(raw) / FullScale
	return seriesOhms * (1 - x) / x, nil
}

// Convert returns the temperature for a raw reading taken across a series
// resistor of seriesOhms.
func Convert(raw int, seriesOhms float64) (Temperature, error) {
	r, err := Resistance(raw, seriesOhms)
	if err != nil {
		return Invalid, err
	}
	l := math.Log(r / ReferenceResistance)
	kelvin := 1 / (CoeffA + CoeffB*l + CoeffC*l*l + CoeffD*l*l*l)
	celsius := kelvin - KelvinOffset
	return Temperature(9.0/5.0*celsius + 32), nil
}
