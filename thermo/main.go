// Command thermo runs the thermometer appliance on a host: against a
// simulated or ADS1115 attached thermistor, with the LCD printed to the
// terminal, an SSD1306 panel or a desktop window.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/gothermo/pkg/config"
)

func main() {
	var (
		portFlag    = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag    = flag.Bool("mock", false, "Use the simulated sensor")
		guiFlag     = flag.Bool("gui", false, "Open the simulator window")
		displayFlag = flag.String("display", "", "Display override: console, ssd1306 or none")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mockFlag {
		cfg.Sensor.Type = "mock"
	}
	if *displayFlag != "" {
		cfg.Display.Type = *displayFlag
	}

	if *guiFlag {
		// The window mirrors the LCD; keep the terminal for the log.
		if *displayFlag == "" && cfg.Display.Type == "console" {
			cfg.Display.Type = "none"
		}
		runGUI(cfg, *configFlag)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newAppliance(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	a.start(ctx)
	<-ctx.Done()
	a.stop()
}
