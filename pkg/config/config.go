package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration of the hosted thermometer.
//
// The calibration of the appliance (series resistance, thermistor
// coefficients, bar graph window, telemetry decimation) is fixed in code;
// this only describes how the appliance is wired to the host.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Display DisplayConfig `yaml:"display"`
	Timer   TimerConfig   `yaml:"timer"`
	Buzzer  BuzzerConfig  `yaml:"buzzer"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	History HistoryConfig `yaml:"history"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains telemetry serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"` // Empty disables the serial link
	BaudRate int    `yaml:"baud_rate"`
}

// SensorConfig selects and configures the analog front end.
type SensorConfig struct {
	Type         string        `yaml:"type"` // "mock" or "ads1115"
	I2CBus       string        `yaml:"i2c_bus"`
	I2CAddress   uint16        `yaml:"i2c_address"`
	Channel      int           `yaml:"channel"`
	SupplyVolts  float64       `yaml:"supply_volts"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"`
}

// DisplayConfig selects where the LCD framebuffer is flushed to.
type DisplayConfig struct {
	Type        string        `yaml:"type"` // "console", "ssd1306" or "none"
	I2CBus      string        `yaml:"i2c_bus"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	SettleDelay time.Duration `yaml:"settle_delay"` // Wait after initialization
}

// TimerConfig contains the wake-up timer configuration.
type TimerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// BuzzerConfig contains the startup beeper configuration.
type BuzzerConfig struct {
	Pin      string        `yaml:"pin"` // Empty disables the beeper
	Duration time.Duration `yaml:"duration"`
}

// MQTTConfig contains the optional telemetry mirror configuration.
type MQTTConfig struct {
	Server   string `yaml:"server"` // Empty disables the mirror
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HistoryConfig contains the trend view settings of the simulator.
type HistoryConfig struct {
	WindowSeconds    float64 `yaml:"window_seconds"`     // Time window kept for the trend
	MaxDisplayPoints int     `yaml:"max_display_points"` // Points drawn after downsampling
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	BaseTemperature float64       `yaml:"base_temperature"` // Center of the simulated swing (°F)
	Swing           float64       `yaml:"swing"`            // Amplitude of the swing (°F)
	Period          time.Duration `yaml:"period"`           // Period of the swing
	Noise           float64       `yaml:"noise"`            // Noise amplitude (°F)
	ConversionPolls int           `yaml:"conversion_polls"` // Ready polls before a conversion completes
	Disconnected    bool          `yaml:"disconnected"`     // Simulate an unplugged probe
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 9600,
		},
		Sensor: SensorConfig{
			Type:         "mock",
			I2CBus:       "",
			I2CAddress:   0x48,
			Channel:      0,
			SupplyVolts:  3.3,
			PollInterval: time.Millisecond,
			MaxPolls:     50,
		},
		Display: DisplayConfig{
			Type:        "console",
			Width:       84, // Nokia 3310 panel
			Height:      48,
			SettleDelay: 100 * time.Millisecond,
		},
		Timer: TimerConfig{
			// 1 MHz clock, /1024 prescaler, 8-bit counter overflow
			Interval: 262144 * time.Microsecond,
		},
		Buzzer: BuzzerConfig{
			Pin:      "",
			Duration: 40 * time.Millisecond,
		},
		MQTT: MQTTConfig{
			ClientID: "gothermo",
			Topic:    "gothermo/temperature",
		},
		History: HistoryConfig{
			WindowSeconds:    600.0,
			MaxDisplayPoints: 500,
		},
		Mock: MockConfig{
			BaseTemperature: 70.0,
			Swing:           8.0,
			Period:          2 * time.Minute,
			Noise:           0.2,
			ConversionPolls: 2,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sensor.Type == "" {
		c.Sensor.Type = def.Sensor.Type
	}
	if c.Sensor.I2CAddress == 0 {
		c.Sensor.I2CAddress = def.Sensor.I2CAddress
	}
	if c.Sensor.SupplyVolts == 0 {
		c.Sensor.SupplyVolts = def.Sensor.SupplyVolts
	}
	if c.Sensor.MaxPolls == 0 {
		c.Sensor.MaxPolls = def.Sensor.MaxPolls
	}

	if c.Display.Type == "" {
		c.Display.Type = def.Display.Type
	}
	if c.Display.Width == 0 {
		c.Display.Width = def.Display.Width
	}
	if c.Display.Height == 0 {
		c.Display.Height = def.Display.Height
	}

	if c.Timer.Interval == 0 {
		c.Timer.Interval = def.Timer.Interval
	}

	if c.Buzzer.Duration == 0 {
		c.Buzzer.Duration = def.Buzzer.Duration
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}

	if c.History.WindowSeconds == 0 {
		c.History.WindowSeconds = def.History.WindowSeconds
	}
	if c.History.MaxDisplayPoints == 0 {
		c.History.MaxDisplayPoints = def.History.MaxDisplayPoints
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
	if c.Mock.BaseTemperature == 0 {
		c.Mock.BaseTemperature = def.Mock.BaseTemperature
	}
}
