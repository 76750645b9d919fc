// Package history keeps a time window of thermometer readings for the
// trend view of the simulator.
package history

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/thermometer"
)

// Sample is one cycle of the thermometer as kept in the history.
type Sample struct {
	Timestamp   time.Time
	Raw         int
	Temperature float64 // °F, NaN when the reading failed
}

// Valid reports whether the sample holds a temperature.
func (s Sample) Valid() bool {
	return !math.IsNaN(s.Temperature)
}

// Stats summarizes the valid samples of the window.
type Stats struct {
	Count   int // Valid samples
	Faults  int // Samples without a temperature
	Min     float64
	Max     float64
	Mean    float64
	Current float64
	// Rate is the change between the first and the last valid sample, in
	// °F per minute.
	Rate float64
}

// History maintains a FIFO of samples limited by age, not count.
// Samples are ordered first to last.
type History struct {
	windowDuration time.Duration

	mu      sync.RWMutex
	samples []Sample

	callbacks []func(samples []Sample, stats Stats)
	cbMu      sync.RWMutex

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a History with the window of cfg.
func New(cfg *config.HistoryConfig) *History {
	return &History{
		windowDuration: time.Duration(cfg.WindowSeconds * float64(time.Second)),
		samples:        make([]Sample, 0),
	}
}

// FromReading converts a loop Reading.
func FromReading(r thermometer.Reading) Sample {
	t := math.NaN()
	if r.Temperature.Valid() {
		t = r.Temperature.Fahrenheit()
	}
	return Sample{Timestamp: r.Time, Raw: r.Raw, Temperature: t}
}

// Observe records a loop Reading. It can be registered with
// thermometer.Loop.OnCycle.
func (h *History) Observe(r thermometer.Reading) {
	h.Add(FromReading(r))
}

// ProcessReadings records readings from the input channel until it closes.
func (h *History) ProcessReadings(input <-chan thermometer.Reading) {
	for r := range input {
		h.Observe(r)
	}
	h.mu.Lock()
	h.shutdown = true
	h.mu.Unlock()
}

// Add appends a sample, drops samples older than the window and notifies
// the callbacks.
func (h *History) Add(s Sample) {
	h.mu.Lock()
	h.samples = append(h.samples, s)

	// Samples at or before the cutoff are outside the window
	cutoff := s.Timestamp.Add(-h.windowDuration)
	drop := 0
	for drop < len(h.samples) && !h.samples[drop].Timestamp.After(cutoff) {
		drop++
	}
	if drop > 0 {
		h.samples = h.samples[drop:]
	}
	h.mu.Unlock()

	h.notifyCallbacks()
}

// Samples returns a copy of the samples in the window.
func (h *History) Samples() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Stats returns the summary of the window.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return computeStats(h.samples)
}

// OnUpdate registers a callback called after every Add with copies of the
// window and its summary.
func (h *History) OnUpdate(callback func(samples []Sample, stats Stats)) {
	h.cbMu.Lock()
	defer h.cbMu.Unlock()
	h.callbacks = append(h.callbacks, callback)
}

// notifyCallbacks copies the data under the read lock, then calls the
// callbacks without holding any lock.
func (h *History) notifyCallbacks() {
	h.mu.RLock()
	if h.shutdown {
		h.mu.RUnlock()
		return
	}
	samples := make([]Sample, len(h.samples))
	copy(samples, h.samples)
	stats := computeStats(h.samples)
	h.mu.RUnlock()

	h.cbMu.RLock()
	callbacks := make([]func(samples []Sample, stats Stats), len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(samples, stats)
	}
}

func computeStats(samples []Sample) Stats {
	var st Stats
	var sum float64
	var first, last *Sample
	for i := range samples {
		s := &samples[i]
		if !s.Valid() {
			st.Faults++
			continue
		}
		if st.Count == 0 {
			st.Min, st.Max = s.Temperature, s.Temperature
			first = s
		}
		st.Min = math.Min(st.Min, s.Temperature)
		st.Max = math.Max(st.Max, s.Temperature)
		sum += s.Temperature
		st.Count++
		last = s
	}
	if st.Count == 0 {
		st.Current = math.NaN()
		return st
	}
	st.Mean = sum / float64(st.Count)
	st.Current = last.Temperature
	if dt := last.Timestamp.Sub(first.Timestamp); dt > 0 {
		st.Rate = (last.Temperature - first.Temperature) / dt.Minutes()
	}
	return st
}
