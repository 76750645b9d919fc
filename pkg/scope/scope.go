package scope

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gothermo/pkg/bargraph"
	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/history"
)

// Temperature range covered by the bar graph of the appliance.
const (
	bandMin = bargraph.Floor
	bandMax = bargraph.Floor + float64(bargraph.Rows)/bargraph.RowsPerDegree
)

// TrendWidget is a custom Fyne widget that plots the temperature history
// oscilloscope style.
type TrendWidget struct {
	widget.BaseWidget

	cfg *config.HistoryConfig

	// Data (protected by mu)
	mu    sync.RWMutex
	stats history.Stats

	// Display buffer (reused for downsampling)
	displaySamples []history.Sample

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a new TrendWidget instance.
func New(cfg *config.HistoryConfig) *TrendWidget {
	maxPoints := cfg.MaxDisplayPoints
	if maxPoints <= 0 {
		maxPoints = 500
	}
	s := &TrendWidget{
		cfg:              cfg,
		displaySamples:   make([]history.Sample, 0, maxPoints),
		maxDisplayPoints: maxPoints,
	}
	s.stats.Current = math.NaN()
	s.updateAutoScale()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with a new history window.
// This should be called from the history callback using fyne.Do().
func (s *TrendWidget) UpdateData(samples []history.Sample, stats history.Stats) {
	s.mu.Lock()
	s.displaySamples = history.Downsample(s.displaySamples, samples, s.maxDisplayPoints)
	s.stats = stats
	s.updateAutoScale()
	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateAutoScale calculates the axes from the current data. The Y axis
// always covers the bar graph range.
func (s *TrendWidget) updateAutoScale() {
	s.yMin, s.yMax = bandMin, bandMax
	for _, sample := range s.displaySamples {
		if !sample.Valid() {
			continue
		}
		s.yMin = math.Min(s.yMin, sample.Temperature)
		s.yMax = math.Max(s.yMax, sample.Temperature)
	}

	// Add 10% margin
	margin := (s.yMax - s.yMin) * 0.1
	s.yMin -= margin
	s.yMax += margin

	window := time.Duration(s.cfg.WindowSeconds * float64(time.Second))
	if len(s.displaySamples) == 0 {
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(window)
		return
	}
	s.xMin = s.displaySamples[0].Timestamp
	s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	// Ensure minimum window
	if s.xMax.Sub(s.xMin) < window {
		s.xMax = s.xMin.Add(window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *TrendWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &trendRenderer{
		trend:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
