package scope

import (
	"image"
	"math"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestTrendWidget_AutoScale(t *testing.T) {
	test.NewTempApp(t)
	w := New(&config.HistoryConfig{WindowSeconds: 60, MaxDisplayPoints: 100})

	// Empty: the bar graph range plus margin.
	assert.InDelta(t, 58.0, w.yMin, 1e-9)
	assert.InDelta(t, 82.0, w.yMax, 1e-9)

	now := time.Now()
	samples := []history.Sample{
		{Timestamp: now, Temperature: 90},
		{Timestamp: now.Add(time.Second), Temperature: math.NaN()},
		{Timestamp: now.Add(2 * time.Second), Temperature: 70},
	}
	w.UpdateData(samples, history.Stats{Count: 2, Faults: 1, Min: 70, Max: 90, Current: 70})

	assert.InDelta(t, 57.0, w.yMin, 1e-9)
	assert.InDelta(t, 93.0, w.yMax, 1e-9)
	assert.Equal(t, now, w.xMin)
	assert.Equal(t, now.Add(time.Minute), w.xMax)
	assert.Len(t, w.displaySamples, 3)
}

func TestTrendWidget_Downsamples(t *testing.T) {
	test.NewTempApp(t)
	w := New(&config.HistoryConfig{WindowSeconds: 60, MaxDisplayPoints: 10})

	now := time.Now()
	samples := make([]history.Sample, 100)
	for i := range samples {
		samples[i] = history.Sample{Timestamp: now.Add(time.Duration(i) * time.Second), Temperature: 70}
	}
	w.UpdateData(samples, history.Stats{})
	assert.Len(t, w.displaySamples, 10)
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "no reading (2 faults)", formatStats(history.Stats{Faults: 2, Current: math.NaN()}))
	assert.Equal(t, "72.3°F  min 70.0  max 74.0  +0.50°F/min",
		formatStats(history.Stats{Count: 3, Current: 72.3, Min: 70, Max: 74, Rate: 0.5}))
	assert.Contains(t, formatStats(history.Stats{Count: 1, Current: 70, Faults: 1}), "1 faults")
}

func TestLCDView_Draw(t *testing.T) {
	test.NewTempApp(t)
	v := NewLCDView(84, 48, 4)
	v.do = func(f func()) { f() }
	assert.Equal(t, image.Rect(0, 0, 84, 48), v.Bounds())

	frame := image1bit.NewVerticalLSB(v.Bounds())
	frame.SetBit(63, 20, image1bit.On)
	require.NoError(t, v.Draw(v.Bounds(), frame, image.Point{}))

	img, ok := v.raster.Image.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, lcdOn, img.RGBAAt(63, 20))
	assert.Equal(t, lcdOff, img.RGBAAt(0, 0))

	require.NoError(t, v.Halt())
	img = v.raster.Image.(*image.RGBA)
	assert.Equal(t, lcdOff, img.RGBAAt(63, 20))
}
