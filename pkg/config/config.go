package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Set at build time by the dev tool.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	AdapterMCP2221 = "mcp2221"
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config describes how the CLI reaches the sensor.
type Config struct {
	Adapter string `yaml:"adapter"`
	// Device is the periph.io bus name, e.g. /dev/i2c-1 or "1".
	Device string `yaml:"device"`
	// Bus is the bus number used by gobot adaptors.
	Bus int `yaml:"bus"`
	// SpeedKHz is the I2C clock; 0 keeps the adapter default.
	SpeedKHz int           `yaml:"speed_khz"`
	Interval time.Duration `yaml:"interval"`
}

func Default() Config {
	return Config{
		Adapter:  AdapterMCP2221,
		Device:   "/dev/i2c-1",
		Bus:      0,
		SpeedKHz: 100,
		Interval: 200 * time.Millisecond,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterMCP2221, AdapterGeneric, AdapterNanoPi:
	default:
		return fmt.Errorf("%w: unknown adapter %q", ErrInvalidConfig, c.Adapter)
	}
	if c.Bus < 0 {
		return fmt.Errorf("%w: negative bus number %d", ErrInvalidConfig, c.Bus)
	}
	if c.SpeedKHz < 0 || c.SpeedKHz > 1000 {
		return fmt.Errorf("%w: speed %d kHz out of range", ErrInvalidConfig, c.SpeedKHz)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	return nil
}
