package thermistor

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func TestConvert_Midscale(t *testing.T) {
	got, err := Convert(512, SeriesResistance)
	require.NoError(t, err)

	l := math.Log(SeriesResistance / ReferenceResistance)
	kelvin := 1 / (CoeffA + CoeffB*l + CoeffC*math.Pow(l, 2) + CoeffD*math.Pow(l, 3))
	want := 9.0/5.0*(kelvin-272.15) + 32

	assert.InDelta(t, want, got.Fahrenheit(), 1e-9)
	assert.InDelta(t, 78.391, got.Fahrenheit(), 0.01)
}

func TestConvert_ReferencePoint(t *testing.T) {
	// 10k series resistor at midscale puts the thermistor at its reference
	// resistance, where only coefficient A contributes.
	got, err := Convert(512, ReferenceResistance)
	require.NoError(t, err)
	want := 9.0/5.0*(1/CoeffA-KelvinOffset) + 32
	assert.InDelta(t, want, got.Fahrenheit(), 1e-9)
}

func TestConvert_Monotonic(t *testing.T) {
	prev, err := Convert(1, SeriesResistance)
	require.NoError(t, err)
	for raw := 2; raw < FullScale; raw++ {
		cur, err := Convert(raw, SeriesResistance)
		require.NoError(t, err, "raw=%d", raw)
		require.Greater(t, cur.Fahrenheit(), prev.Fahrenheit(), "raw=%d", raw)
		prev = cur
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    int
		series float64
		want   error
	}{
		{"disconnected", FullScale, SeriesResistance, ErrSensorDisconnected},
		{"zero reading", 0, SeriesResistance, ErrSensorOutOfRange},
		{"negative reading", -3, SeriesResistance, ErrSensorOutOfRange},
		{"above full scale", 2000, SeriesResistance, ErrSensorOutOfRange},
		{"zero series resistance", 512, 0, ErrSensorOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.raw, tt.series)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, got.Valid())
		})
	}
}

func TestConvert32_MatchesDoublePrecision(t *testing.T) {
	for _, raw := range []int{40, 200, 512, 700, 1000} {
		want, err := Convert(raw, SeriesResistance)
		require.NoError(t, err)
		got, err := Convert32(raw, SeriesResistance)
		require.NoError(t, err)
		assert.InDelta(t, want.Fahrenheit(), got.Fahrenheit(), 0.05, "raw=%d", raw)
	}

	_, err := Convert32(FullScale, SeriesResistance)
	assert.ErrorIs(t, err, ErrSensorDisconnected)
	_, err = Convert32(0, SeriesResistance)
	assert.ErrorIs(t, err, ErrSensorOutOfRange)
}

func TestTemperature_Units(t *testing.T) {
	temp := Temperature(212)
	assert.True(t, temp.Valid())
	assert.InDelta(t, 100.0, temp.Celsius(), 1e-9)
	assert.InDelta(t, float64(physic.ZeroCelsius+100*physic.Celsius), float64(temp.Physic()), float64(physic.MilliKelvin))
	assert.Equal(t, fmt.Sprintf("212.00°F/%s", physic.ZeroCelsius+100*physic.Celsius), temp.String())
	assert.Equal(t, "invalid", Invalid.String())
}

func TestCell(t *testing.T) {
	c := NewCell()
	assert.False(t, c.Load().Valid())

	c.Store(72.5)
	assert.Equal(t, Temperature(72.5), c.Load())

	c.Store(Invalid)
	assert.False(t, c.Load().Valid())
}

func TestCell_ConcurrentSnapshots(t *testing.T) {
	c := NewCell()
	values := []Temperature{-40.125, 68.5, 99.875}
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			c.Store(values[i%len(values)])
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		got := c.Load()
		if got.Valid() {
			assert.Contains(t, values, got)
		}
	}
}
