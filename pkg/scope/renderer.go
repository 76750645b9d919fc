package scope

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gothermo/pkg/history"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	faultColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	bandColor  = color.RGBA{R: 40, G: 70, B: 40, A: 255}
	statsColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

const (
	marginLeft  = 60
	marginRight = 20
	marginTop   = 20
	marginBot   = 40
)

// trendRenderer renders the trend widget.
type trendRenderer struct {
	trend *TrendWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *trendRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *trendRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *trendRenderer) Refresh() {
	r.trend.mu.RLock()
	samples := r.trend.displaySamples
	stats := r.trend.stats
	yMin, yMax := r.trend.yMin, r.trend.yMax
	xMin, xMax := r.trend.xMin, r.trend.xMax
	r.trend.mu.RUnlock()

	size := r.trend.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	p := plot{
		x:    marginLeft,
		y:    marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBot,
		yMin: yMin,
		yMax: yMax,
		xMin: xMin,
		xMax: xMax,
	}

	r.drawBand(p)
	r.drawGrid(p)
	r.drawFaults(p, samples)
	r.drawTrace(p, samples)
	r.drawStats(p, stats)
}

// plot maps temperatures and timestamps to widget coordinates.
type plot struct {
	x, y, w, h float32
	yMin, yMax float64
	xMin, xMax time.Time
}

func (p plot) posX(t time.Time) float32 {
	return p.x + float32(t.Sub(p.xMin).Seconds()/p.xMax.Sub(p.xMin).Seconds())*p.w
}

func (p plot) posY(v float64) float32 {
	return p.y + p.h - float32((v-p.yMin)/(p.yMax-p.yMin))*p.h
}

// drawBand shades the range shown by the bar graph.
func (r *trendRenderer) drawBand(p plot) {
	top := p.posY(bandMax)
	band := canvas.NewRectangle(bandColor)
	band.Move(fyne.NewPos(p.x, top))
	band.Resize(fyne.NewSize(p.w, p.posY(bandMin)-top))
	r.objects = append(r.objects, band)
}

// drawGrid draws the oscilloscope-style grid.
func (r *trendRenderer) drawGrid(p plot) {
	// Horizontal grid lines (temperature)
	numHLines := 8
	for i := 0; i < numHLines+1; i++ {
		y := p.y + float32(i)*p.h/float32(numHLines)
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		value := p.yMax - float64(i)*(p.yMax-p.yMin)/float64(numHLines)
		text := canvas.NewText(formatTemperature(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	for i := 0; i < numVLines+1; i++ {
		x := p.x + float32(i)*p.w/float32(numVLines)
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		offset := time.Duration(float64(i) * float64(p.xMax.Sub(p.xMin)) / float64(numVLines))
		text := canvas.NewText(formatTime(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws the temperature curve. Failed readings break the curve.
func (r *trendRenderer) drawTrace(p plot, samples []history.Sample) {
	for i := 0; i < len(samples)-1; i++ {
		a, b := samples[i], samples[i+1]
		if !a.Valid() || !b.Valid() {
			continue
		}
		r.addLine(traceColor, 1.5,
			fyne.NewPos(p.posX(a.Timestamp), p.posY(a.Temperature)),
			fyne.NewPos(p.posX(b.Timestamp), p.posY(b.Temperature)))
	}
}

// drawFaults draws a vertical marker at every failed reading.
func (r *trendRenderer) drawFaults(p plot, samples []history.Sample) {
	for _, s := range samples {
		if s.Valid() {
			continue
		}
		x := p.posX(s.Timestamp)
		r.addLine(faultColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))
	}
}

// drawStats draws the summary of the window in the top left corner.
func (r *trendRenderer) drawStats(p plot, st history.Stats) {
	text := canvas.NewText(formatStats(st), statsColor)
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(p.x+10, p.y+10))
	r.objects = append(r.objects, text)
}

func (r *trendRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

// Objects returns all canvas objects for rendering.
func (r *trendRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *trendRenderer) Destroy() {}

func formatTemperature(v float64) string {
	return fmt.Sprintf("%.1f°F", v)
}

func formatTime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

func formatStats(st history.Stats) string {
	if st.Count == 0 || math.IsNaN(st.Current) {
		return fmt.Sprintf("no reading (%d faults)", st.Faults)
	}
	s := fmt.Sprintf("%.1f°F  min %.1f  max %.1f  %+.2f°F/min", st.Current, st.Min, st.Max, st.Rate)
	if st.Faults > 0 {
		s += fmt.Sprintf("  %d faults", st.Faults)
	}
	return s
}
