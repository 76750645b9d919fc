package sensor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func TestConfigForChannelBytes(t *testing.T) {
	tests := []struct {
		channel  int
		msb, lsb byte
	}{
		{0, 0xC3, 0x83},
		{1, 0xD3, 0x83},
		{2, 0xE3, 0x83},
		{3, 0xF3, 0x83},
	}
	for _, tt := range tests {
		msb, lsb, err := configForChannel(tt.channel)
		require.NoError(t, err)
		assert.Equal(t, tt.msb, msb, "channel %d", tt.channel)
		assert.Equal(t, tt.lsb, lsb, "channel %d", tt.channel)
	}

	_, _, err := configForChannel(9)
	assert.Error(t, err)
}

func TestADS1115_Sample(t *testing.T) {
	bus := i2ctest.Playback{
		Ops: []i2ctest.IO{
			// start single-shot conversion on A0
			{Addr: 0x48, W: []byte{pointerConfig, 0xC3, 0x83}},
			// busy
			{Addr: 0x48, W: []byte{pointerConfig}, R: []byte{0x43, 0x83}},
			// done
			{Addr: 0x48, W: []byte{pointerConfig}, R: []byte{0xC3, 0x83}},
			// 13107 counts = 1.638V, about half of 3.3V
			{Addr: 0x48, W: []byte{pointerConv}, R: []byte{0x33, 0x33}},
		},
	}
	adc, err := NewADS1115(&bus, nil)
	require.NoError(t, err)

	raw, err := NewSampler(adc, 0, 5).Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 508, raw)
	require.NoError(t, adc.Disable())
	require.NoError(t, bus.Close())
}

func TestADS1115_NotEnabled(t *testing.T) {
	bus := i2ctest.Playback{}
	adc, err := NewADS1115(&bus, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, adc.StartConversion(), ErrNotEnabled)
	require.NoError(t, bus.Close())
}

func TestADS1115_Scale(t *testing.T) {
	adc, err := NewADS1115(&i2ctest.Playback{}, &ADS1115Opts{Supply: 3300 * physic.MilliVolt})
	require.NoError(t, err)

	assert.Equal(t, uint16(0), adc.scale(-20))
	assert.Equal(t, uint16(0), adc.scale(0))
	assert.Equal(t, uint16(1024), adc.scale(32767), "above supply saturates")
}

func TestNewADS1115_InvalidOpts(t *testing.T) {
	_, err := NewADS1115(&i2ctest.Playback{}, &ADS1115Opts{Channel: 5, Supply: physic.Volt})
	assert.Error(t, err)

	_, err = NewADS1115(&i2ctest.Playback{}, &ADS1115Opts{Supply: 0})
	assert.Error(t, err)
}
