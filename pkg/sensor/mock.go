package sensor

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/thermistor"
)

// Mock simulates the thermistor divider for testing and development.
type Mock struct {
	cfg *config.MockConfig

	mu        sync.Mutex
	enabled   bool
	pending   int  // Ready polls left before the conversion completes
	converted bool // A conversion has been started
	startTime time.Time
	now       func() time.Time
	rng       *rand.Rand
}

// NewMock creates a new simulated converter.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			BaseTemperature: 70.0,
			Swing:           8.0,
			Period:          2 * time.Minute,
			Noise:           0.2,
			ConversionPolls: 2,
		}
	}

	return &Mock{
		cfg:       cfg,
		startTime: time.Now(),
		now:       time.Now,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Enable powers the simulated converter up.
func (m *Mock) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
	return nil
}

// Disable powers the simulated converter down.
func (m *Mock) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
	m.converted = false
	return nil
}

// StartConversion starts a simulated conversion.
func (m *Mock) StartConversion() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return ErrNotEnabled
	}
	m.pending = m.cfg.ConversionPolls
	m.converted = true
	return nil
}

// Ready completes the conversion after the configured number of polls.
func (m *Mock) Ready() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || !m.converted {
		return false, ErrNotEnabled
	}
	if m.pending > 0 {
		m.pending--
		return false, nil
	}
	return true, nil
}

// Result returns the reading for the simulated temperature.
func (m *Mock) Result() (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || !m.converted {
		return 0, ErrNotEnabled
	}
	if m.cfg.Disconnected {
		return thermistor.FullScale, nil
	}
	return uint16(RawFor(thermistor.Temperature(m.temperature()), thermistor.SeriesResistance)), nil
}

// temperature returns the simulated probe temperature (°F).
func (m *Mock) temperature() float64 {
	t := m.cfg.BaseTemperature
	if m.cfg.Period > 0 {
		elapsed := m.now().Sub(m.startTime).Seconds()
		t += m.cfg.Swing * math.Sin(2*math.Pi*elapsed/m.cfg.Period.Seconds())
	}
	if m.cfg.Noise > 0 {
		t += (m.rng.Float64()*2 - 1) * m.cfg.Noise
	}
	return t
}

// RawFor returns the reading whose conversion is closest to t from below,
// clamped to the valid range [1, FullScale-1].
func RawFor(t thermistor.Temperature, seriesOhms float64) int {
	// Conversion increases with the reading, so search for the first
	// reading above t.
	n := sort.Search(thermistor.FullScale-1, func(i int) bool {
		v, err := thermistor.Convert(i+1, seriesOhms)
		return err != nil || v > t
	})
	if n < 1 {
		return 1
	}
	return n
}
