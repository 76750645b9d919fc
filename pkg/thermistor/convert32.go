package thermistor

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Convert32 is Convert computed in single precision. Small MCU toolchains
// implement double as a 32-bit float, so this is what the appliance
// firmware actually evaluates.
func Convert32(raw int, seriesOhms float32) (Temperature, error) {
	if raw == FullScale {
		return Invalid, ErrSensorDisconnected
	}
	if raw <= 0 || raw > FullScale {
		return Invalid, fmt.Errorf("%w: raw=%d", ErrSensorOutOfRange, raw)
	}
	if seriesOhms <= 0 {
		return Invalid, fmt.Errorf("%w: series resistance %g", ErrSensorOutOfRange, seriesOhms)
	}

	x := float32(raw) / FullScale
	r := seriesOhms * (1 - x) / x
	l := math32.Log(r / ReferenceResistance)
	kelvin := 1 / (float32(CoeffA) + float32(CoeffB)*l + float32(CoeffC)*l*l + float32(CoeffD)*l*l*l)
	celsius := kelvin - KelvinOffset
	return Temperature(9.0/5.0*celsius + 32), nil
}
