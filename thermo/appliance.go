package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/itohio/gothermo/pkg/buzzer"
	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/history"
	"github.com/itohio/gothermo/pkg/lcd"
	"github.com/itohio/gothermo/pkg/power"
	"github.com/itohio/gothermo/pkg/sensor"
	"github.com/itohio/gothermo/pkg/telemetry"
	"github.com/itohio/gothermo/pkg/telemetry/link"
	"github.com/itohio/gothermo/pkg/thermistor"
	"github.com/itohio/gothermo/pkg/thermometer"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// readingsBuffer is how many loop readings may wait for a slow history.
const readingsBuffer = 16

// appliance is one running thermometer: the loop, the timer and the
// telemetry link with everything they are wired to.
type appliance struct {
	cfg *config.Config

	coord    *power.Coordinator
	cell     *thermistor.Cell
	loop     *thermometer.Loop
	sampler  *sensor.Sampler
	display  *lcd.Framebuffer
	reporter *telemetry.Reporter
	receiver *link.Receiver
	serial   *link.Serial
	mirror   *link.MQTTMirror
	beeper   *buzzer.Buzzer

	// closers release buses and links in reverse order of opening
	closers []func() error
	// recorders close the reading feeds once the loop has stopped
	recorders []func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// newAppliance wires an appliance from cfg. extraSinks receive every
// display frame in addition to the configured display.
func newAppliance(cfg *config.Config, extraSinks ...display.Drawer) (_ *appliance, err error) {
	a := &appliance{
		cfg:   cfg,
		coord: power.New(cfg.Timer.Interval),
		cell:  thermistor.NewCell(),
	}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if cfg.Sensor.Type == "ads1115" || cfg.Display.Type == "ssd1306" || cfg.Buzzer.Pin != "" {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize periph host: %w", err)
		}
	}

	adc, err := a.openSensor()
	if err != nil {
		return nil, err
	}
	a.sampler = sensor.NewSampler(adc, cfg.Sensor.PollInterval, cfg.Sensor.MaxPolls)

	sinks, err := a.openSinks()
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, extraSinks...)
	a.display, err = lcd.New(&lcd.Opts{W: cfg.Display.Width, H: cfg.Display.Height}, sinks...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.display.Halt)

	if err := a.openTelemetry(); err != nil {
		return nil, err
	}

	opts := &thermometer.Opts{SettleDelay: cfg.Display.SettleDelay}
	if cfg.Buzzer.Pin != "" {
		pin := gpioreg.ByName(cfg.Buzzer.Pin)
		if pin == nil {
			return nil, fmt.Errorf("buzzer pin %q not found", cfg.Buzzer.Pin)
		}
		a.beeper = buzzer.New(pin, cfg.Buzzer.Duration)
		a.closers = append(a.closers, a.beeper.Halt)
		opts.Beeper = a.beeper
	}
	a.loop = thermometer.New(a.coord, a.sampler, a.display, a.cell, opts)

	return a, nil
}

func (a *appliance) openBus(name string) (i2c.BusCloser, error) {
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I²C bus %q: %w", name, err)
	}
	a.closers = append(a.closers, bus.Close)
	return bus, nil
}

func (a *appliance) openSensor() (sensor.ADC, error) {
	switch a.cfg.Sensor.Type {
	case "mock":
		log.Printf("Using simulated sensor (%.1f°F ± %.1f°F)", a.cfg.Mock.BaseTemperature, a.cfg.Mock.Swing)
		return sensor.NewMock(&a.cfg.Mock), nil
	case "ads1115":
		bus, err := a.openBus(a.cfg.Sensor.I2CBus)
		if err != nil {
			return nil, err
		}
		adc, err := sensor.NewADS1115(bus, &sensor.ADS1115Opts{
			Addr:    a.cfg.Sensor.I2CAddress,
			Channel: a.cfg.Sensor.Channel,
			Supply:  physic.ElectricPotential(a.cfg.Sensor.SupplyVolts * float64(physic.Volt)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sensor: %w", err)
		}
		log.Printf("Using %s", adc)
		return adc, nil
	default:
		return nil, fmt.Errorf("unknown sensor type %q", a.cfg.Sensor.Type)
	}
}

func (a *appliance) openSinks() ([]display.Drawer, error) {
	switch a.cfg.Display.Type {
	case "none":
		return nil, nil
	case "console":
		return []display.Drawer{lcd.NewConsole(&lcd.ConsoleOpts{W: a.cfg.Display.Width, H: a.cfg.Display.Height})}, nil
	case "ssd1306":
		bus, err := a.openBus(a.cfg.Display.I2CBus)
		if err != nil {
			return nil, err
		}
		// The panel keeps its native 128x64; the frame lands in its top left
		// corner.
		opts := ssd1306.DefaultOpts
		dev, err := ssd1306.NewI2C(bus, &opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize display: %w", err)
		}
		return []display.Drawer{dev}, nil
	default:
		return nil, fmt.Errorf("unknown display type %q", a.cfg.Display.Type)
	}
}

func (a *appliance) openTelemetry() error {
	var mirrors []telemetry.Mirror
	if a.cfg.MQTT.Server != "" {
		m, err := link.NewMQTTMirror(a.cfg.MQTT)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", a.cfg.MQTT.Server, err)
		}
		a.mirror = m
		a.closers = append(a.closers, m.Close)
		mirrors = append(mirrors, m)
		log.Printf("Mirroring telemetry to %s/%s", a.cfg.MQTT.Server, a.cfg.MQTT.Topic)
	}

	out := telemetry.Discard
	if a.cfg.Serial.Port != "" {
		s := link.NewSerial(a.cfg.Serial.Port, a.cfg.Serial.BaudRate)
		if err := s.Connect(); err != nil {
			return err
		}
		a.serial = s
		a.closers = append(a.closers, s.Close)
		a.receiver = link.NewReceiver(s, a.coord)
		out = s
		log.Printf("Connected to serial port: %s", a.cfg.Serial.Port)
	}

	a.reporter = telemetry.NewReporter(out, a.cell, mirrors...)
	a.coord.OnTick(a.reporter.Handler())
	return nil
}

// record feeds every loop reading to h until the appliance stops. It must
// be called before start.
func (a *appliance) record(h *history.History) {
	readings := make(chan thermometer.Reading, readingsBuffer)
	a.loop.OnCycle(func(r thermometer.Reading) {
		select {
		case readings <- r:
		default:
			log.Printf("History is behind, dropping reading")
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ProcessReadings(readings)
	}()
	a.recorders = append(a.recorders, func() {
		close(readings)
		<-done
	})
}

// start runs the appliance until stop is called or ctx is cancelled.
func (a *appliance) start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.goRun("timer", func() error { return a.coord.Run(ctx) })
	a.goRun("loop", func() error { return a.loop.Run(ctx) })
	if a.receiver != nil {
		a.goRun("receiver", func() error { return a.receiver.Run(ctx) })
	}
}

func (a *appliance) goRun(name string, run func() error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := run(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("%s stopped: %v", name, err)
		}
	}()
}

// stop cancels the appliance, waits for its goroutines and releases the
// hardware.
func (a *appliance) stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	for _, r := range a.recorders {
		r()
	}
	a.recorders = nil
	a.close()
	log.Printf("Stopped at %s after %d cycles, %d telemetry lines", a.cell.Load(), a.loop.Cycles(), a.reporter.Emitted())
}

func (a *appliance) close() {
	if a.sampler != nil {
		if err := a.sampler.Disable(); err != nil {
			log.Printf("Error disabling sensor: %v", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error closing: %v", err)
		}
	}
	a.closers = nil
}
