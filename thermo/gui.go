package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/history"
	"github.com/itohio/gothermo/pkg/scope"
)

// lcdScale is the zoom of the LCD mirror.
const lcdScale = 4

// updateInterval throttles trend updates to ~30 FPS.
const updateInterval = 33 * time.Millisecond

// appState holds the simulator window state.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	connectBtn *widget.Button
	status     *widget.Label
	lcdView    *scope.LCDView
	trend      *scope.TrendWidget
	history    *history.History
	appliance  *appliance

	// Throttling for trend updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// runGUI opens the simulator window and blocks until it is closed.
func runGUI(cfg *config.Config, configPath string) {
	application := app.NewWithID("com.itohio.gothermo")

	window := application.NewWindow("Thermometer")
	window.Resize(fyne.NewSize(1000, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: configPath,
		window:     window,
		status:     widget.NewLabel("Stopped"),
		lcdView:    scope.NewLCDView(cfg.Display.Width, cfg.Display.Height, lcdScale),
		trend:      scope.New(&cfg.History),
	}

	toolbar := createToolbar(state)
	content := container.NewBorder(
		toolbar,
		state.status,
		container.NewCenter(state.lcdView),
		nil,
		state.trend,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		if state.appliance != nil {
			state.appliance.stop()
			state.appliance = nil
		}
	})
	window.ShowAndRun()
}

// createToolbar creates the toolbar with the Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewHBox(connectBtn, settingsBtn)
}

// handleConnect starts or stops the appliance.
func handleConnect(state *appState) {
	if state.appliance != nil {
		state.appliance.stop()
		state.appliance = nil
		state.connectBtn.SetIcon(theme.MediaPlayIcon())
		state.status.SetText("Stopped")
		return
	}

	a, err := newAppliance(state.cfg, state.lcdView)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to start: %w", err), state.window)
		return
	}

	// A fresh history per run so the trend starts empty.
	state.history = history.New(&state.cfg.History)
	state.history.OnUpdate(func(samples []history.Sample, stats history.Stats) {
		// Throttle updates to prevent UI from being overwhelmed
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		fyne.Do(func() {
			state.trend.UpdateData(samples, stats)
			state.status.SetText(fmt.Sprintf("%s, %d cycles, %d telemetry lines", a.cell.Load(), a.loop.Cycles(), a.reporter.Emitted()))
		})
	})
	a.record(state.history)

	a.start(context.Background())
	state.appliance = a
	state.connectBtn.SetIcon(theme.MediaStopIcon())
	log.Printf("Started with %s sensor", state.cfg.Sensor.Type)
}

// restart applies a configuration change to a running appliance.
func restart(state *appState) {
	if state.appliance == nil {
		return
	}
	handleConnect(state)
	handleConnect(state)
}
