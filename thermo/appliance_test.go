package main

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Display.Type = "none"
	cfg.Display.SettleDelay = time.Millisecond
	cfg.Timer.Interval = 5 * time.Millisecond
	cfg.Sensor.PollInterval = 0
	cfg.Mock.Swing = 0
	cfg.Mock.Noise = 0
	return cfg
}

func TestAppliance_Mock(t *testing.T) {
	a, err := newAppliance(testConfig())
	require.NoError(t, err)
	assert.Nil(t, a.serial)
	assert.Nil(t, a.receiver)
	assert.Nil(t, a.mirror)

	a.start(context.Background())
	require.Eventually(t, func() bool {
		return a.reporter.Emitted() >= 1 && a.loop.Cycles() >= 2
	}, 5*time.Second, time.Millisecond)
	a.stop()

	temp := a.cell.Load()
	require.True(t, temp.Valid())
	assert.InDelta(t, 70.0, temp.Fahrenheit(), 0.5)
}

func TestAppliance_RecordsHistory(t *testing.T) {
	cfg := testConfig()
	a, err := newAppliance(cfg)
	require.NoError(t, err)

	h := history.New(&cfg.History)
	a.record(h)
	a.start(context.Background())
	require.Eventually(t, func() bool {
		return h.Stats().Count >= 3
	}, 5*time.Second, time.Millisecond)
	a.stop()

	stats := h.Stats()
	assert.Zero(t, stats.Faults)
	assert.InDelta(t, 70.0, stats.Current, 0.5)
	assert.LessOrEqual(t, uint64(len(h.Samples())), a.loop.Cycles())
}

func TestAppliance_UnknownSensor(t *testing.T) {
	cfg := testConfig()
	cfg.Sensor.Type = "lm35"
	_, err := newAppliance(cfg)
	assert.ErrorContains(t, err, "unknown sensor type")
}

func TestAppliance_UnknownDisplay(t *testing.T) {
	cfg := testConfig()
	cfg.Display.Type = "vfd"
	_, err := newAppliance(cfg)
	assert.ErrorContains(t, err, "unknown display type")
}
