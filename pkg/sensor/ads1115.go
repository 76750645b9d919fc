package sensor

import (
	"fmt"
	"sync"

	"github.com/itohio/gothermo/pkg/thermistor"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01

	// DefaultADS1115Address is the address with ADDR tied to ground.
	DefaultADS1115Address = 0x48

	// configOS is set in the config register while the device is idle.
	configOS = 0x80
)

// ADS1115Opts configures an ADS1115 front end.
type ADS1115Opts struct {
	Addr    uint16
	Channel int
	// Supply is the voltage across the thermistor divider.
	Supply physic.ElectricPotential
}

// DefaultADS1115Opts reads channel A0 of a divider fed from 3.3V.
var DefaultADS1115Opts = ADS1115Opts{
	Addr:    DefaultADS1115Address,
	Channel: 0,
	Supply:  3300 * physic.MilliVolt,
}

// ADS1115 reads the thermistor divider through a TI ADS1115 in single-shot
// mode, rescaling its 16-bit result onto the 10-bit scale.
type ADS1115 struct {
	mu        sync.Mutex
	dev       *i2c.Dev
	supply    physic.ElectricPotential
	fullScale physic.ElectricPotential
	msb, lsb  byte
	enabled   bool
}

// NewADS1115 returns a converter on bus. The device is not touched until
// the first conversion.
func NewADS1115(bus i2c.Bus, opts *ADS1115Opts) (*ADS1115, error) {
	if opts == nil {
		o := DefaultADS1115Opts
		opts = &o
	}
	if opts.Supply <= 0 {
		return nil, fmt.Errorf("ads1115: invalid supply voltage %s", opts.Supply)
	}
	msb, lsb, err := configForChannel(opts.Channel)
	if err != nil {
		return nil, err
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultADS1115Address
	}
	return &ADS1115{
		dev:       &i2c.Dev{Addr: addr, Bus: bus},
		supply:    opts.Supply,
		fullScale: 4096 * physic.MilliVolt,
		msb:       msb,
		lsb:       lsb,
	}, nil
}

func (a *ADS1115) String() string {
	return fmt.Sprintf("ADS1115{%s}", a.dev)
}

// Enable allows conversions. The ADS1115 powers down by itself after each
// single-shot conversion.
func (a *ADS1115) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = true
	return nil
}

// Disable rejects further conversions until Enable is called.
func (a *ADS1115) Disable() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = false
	return nil
}

// StartConversion writes the config register with the OS bit set.
func (a *ADS1115) StartConversion() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return ErrNotEnabled
	}
	if err := a.dev.Tx([]byte{pointerConfig, a.msb, a.lsb}, nil); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Ready reports whether the conversion has completed.
func (a *ADS1115) Ready() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var buf [2]byte
	if err := a.dev.Tx([]byte{pointerConfig}, buf[:]); err != nil {
		return false, fmt.Errorf("read config: %w", err)
	}
	return buf[0]&configOS != 0, nil
}

// Result reads the conversion register and rescales it to the 10-bit
// divider ratio. Voltages at or above the supply read as
// thermistor.FullScale.
func (a *ADS1115) Result() (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var buf [2]byte
	if err := a.dev.Tx([]byte{pointerConv}, buf[:]); err != nil {
		return 0, fmt.Errorf("read conversion: %w", err)
	}
	raw := int16(buf[0])<<8 | int16(buf[1])
	return a.scale(raw), nil
}

func (a *ADS1115) scale(raw int16) uint16 {
	if raw <= 0 {
		return 0
	}
	ratio := float64(raw) * float64(a.fullScale) / 32768 / float64(a.supply)
	v := int(ratio * thermistor.FullScale)
	if v > thermistor.FullScale {
		v = thermistor.FullScale
	}
	return uint16(v)
}

// configForChannel returns the config register for a single-ended
// single-shot conversion at 128SPS with the ±4.096V range.
func configForChannel(channel int) (byte, byte, error) {
	if channel < 0 || channel > 3 {
		return 0, 0, fmt.Errorf("ads1115: invalid channel %d", channel)
	}
	mux := byte(0x4 + channel)
	const (
		pga = 0x1 // ±4.096V
		dr  = 0x4 // 128SPS
	)
	var config uint16 = 0x8000 // OS = 1 (start single conversion)
	config |= uint16(mux) << 12
	config |= pga << 9
	config |= 1 << 8 // single-shot mode
	config |= dr << 5
	// comparator disabled (bits 1:0 = 11)
	config |= 0x3
	return byte(config >> 8), byte(config & 0xFF), nil
}
