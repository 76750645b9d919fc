package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gothermo/pkg/telemetry/link"
)

// showSettingsDialog displays a settings dialog with tabs for the host
// wiring of the appliance.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createSensorTab(state),
		createMQTTTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 450))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 450))
	d.Show()
}

// saveAndRestart persists the configuration and restarts a running
// appliance so the change takes effect.
func saveAndRestart(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	restart(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := link.Ports()
	portOptions := []string{"(none)"}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := currentPort == ""
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	} else {
		portSelect.SetSelected(portOptions[0])
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			port := portSelect.Selected
			if port == portOptions[0] {
				port = ""
			}
			state.cfg.Serial.Port = port
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createSensorTab creates the Sensor configuration tab.
func createSensorTab(state *appState) *container.TabItem {
	typeSelect := widget.NewSelect([]string{"mock", "ads1115"}, nil)
	typeSelect.SetSelected(state.cfg.Sensor.Type)

	busEntry := widget.NewEntry()
	busEntry.SetText(state.cfg.Sensor.I2CBus)

	addrEntry := widget.NewEntry()
	addrEntry.SetText(fmt.Sprintf("0x%02x", state.cfg.Sensor.I2CAddress))

	channelEntry := widget.NewEntry()
	channelEntry.SetText(strconv.Itoa(state.cfg.Sensor.Channel))

	supplyEntry := widget.NewEntry()
	supplyEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Sensor.SupplyVolts))

	pollEntry := widget.NewEntry()
	pollEntry.SetText(state.cfg.Sensor.PollInterval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Type", Widget: typeSelect},
			{Text: "I²C Bus", Widget: busEntry},
			{Text: "I²C Address", Widget: addrEntry},
			{Text: "Channel", Widget: channelEntry},
			{Text: "Supply (V)", Widget: supplyEntry},
			{Text: "Poll Interval", Widget: pollEntry},
		},
		OnSubmit: func() {
			state.cfg.Sensor.Type = typeSelect.Selected
			state.cfg.Sensor.I2CBus = busEntry.Text
			if addr, err := strconv.ParseUint(addrEntry.Text, 0, 16); err == nil {
				state.cfg.Sensor.I2CAddress = uint16(addr)
			}
			if ch, err := strconv.Atoi(channelEntry.Text); err == nil {
				state.cfg.Sensor.Channel = ch
			}
			if v, err := strconv.ParseFloat(supplyEntry.Text, 64); err == nil {
				state.cfg.Sensor.SupplyVolts = v
			}
			if d, err := time.ParseDuration(pollEntry.Text); err == nil {
				state.cfg.Sensor.PollInterval = d
			}
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("Sensor", form)
}

// createMQTTTab creates the MQTT mirror configuration tab.
func createMQTTTab(state *appState) *container.TabItem {
	serverEntry := widget.NewEntry()
	serverEntry.SetPlaceHolder("tcp://localhost:1883")
	serverEntry.SetText(state.cfg.MQTT.Server)

	topicEntry := widget.NewEntry()
	topicEntry.SetText(state.cfg.MQTT.Topic)

	userEntry := widget.NewEntry()
	userEntry.SetText(state.cfg.MQTT.Username)

	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetText(state.cfg.MQTT.Password)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Server", Widget: serverEntry},
			{Text: "Topic", Widget: topicEntry},
			{Text: "Username", Widget: userEntry},
			{Text: "Password", Widget: passwordEntry},
		},
		OnSubmit: func() {
			state.cfg.MQTT.Server = serverEntry.Text
			if topicEntry.Text != "" {
				state.cfg.MQTT.Topic = topicEntry.Text
			}
			state.cfg.MQTT.Username = userEntry.Text
			state.cfg.MQTT.Password = passwordEntry.Text
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("MQTT", form)
}

// createMockTab creates the simulated sensor configuration tab.
func createMockTab(state *appState) *container.TabItem {
	baseEntry := widget.NewEntry()
	baseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.BaseTemperature))

	swingEntry := widget.NewEntry()
	swingEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Swing))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.Period.String())

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.Noise))

	disconnectedCheck := widget.NewCheck("", nil)
	disconnectedCheck.SetChecked(state.cfg.Mock.Disconnected)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Base Temperature (°F)", Widget: baseEntry},
			{Text: "Swing (°F)", Widget: swingEntry},
			{Text: "Period", Widget: periodEntry},
			{Text: "Noise (°F)", Widget: noiseEntry},
			{Text: "Probe Disconnected", Widget: disconnectedCheck},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(baseEntry.Text, 64); err == nil {
				state.cfg.Mock.BaseTemperature = v
			}
			if v, err := strconv.ParseFloat(swingEntry.Text, 64); err == nil {
				state.cfg.Mock.Swing = v
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Mock.Period = d
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.Noise = v
			}
			state.cfg.Mock.Disconnected = disconnectedCheck.Checked
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
