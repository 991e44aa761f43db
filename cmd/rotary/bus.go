package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/rotary"
	"github.com/mklimuk/rotary/adapter"
	"github.com/mklimuk/rotary/i2c"
	"github.com/mklimuk/rotary/pkg/config"
)

// busFlags are shared by every command talking to the sensor.
func busFlags() []cli.Flag {
	def := config.Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Value:   def.Adapter,
			Usage:   "bus adapter: mcp2221, generic (periph.io) or nanopi (gobot)",
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Value:   def.Device,
			Usage:   "i2c device for the generic adapter",
		},
		&cli.IntFlag{
			Name:  "bus",
			Value: def.Bus,
			Usage: "i2c bus number for the nanopi adapter",
		},
		&cli.IntFlag{
			Name:  "speed",
			Value: def.SpeedKHz,
			Usage: "i2c clock in kHz, 0 keeps the adapter default",
		},
	}
}

// loadConfig reads the optional config file; flags set on the command line win.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.Int("bus")
	}
	if c.IsSet("speed") {
		cfg.SpeedKHz = c.Int("speed")
	}
	if c.IsSet("interval") {
		cfg.Interval = c.Duration("interval")
	}
	return cfg, cfg.Validate()
}

// openBus returns the transport selected by cfg and a function releasing it.
func openBus(ctx context.Context, cfg config.Config) (rotary.I2CBus, func(), error) {
	switch cfg.Adapter {
	case config.AdapterMCP2221:
		ad := adapter.NewMCP2221()
		if err := ad.Init(ctx, cfg.SpeedKHz*1000); err != nil {
			return nil, nil, fmt.Errorf("mcp2221 initialization error: %w", err)
		}
		return ad, func() {}, nil
	case config.AdapterGeneric:
		bus, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, nil, err
		}
		if cfg.SpeedKHz > 0 {
			if err := bus.SetSpeed(physic.Frequency(cfg.SpeedKHz) * physic.KiloHertz); err != nil {
				_ = bus.Close()
				return nil, nil, err
			}
		}
		return bus, func() {
			if err := bus.Close(); err != nil {
				slog.Error("error closing bus", "error", err)
			}
		}, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.Connect(); err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := i2c.NewGobotBus(npi, cfg.Bus)
		return bus, func() {
			if err := bus.Close(); err != nil {
				slog.Error("error closing bus", "error", err)
			}
			if err := npi.Finalize(); err != nil {
				slog.Error("error finalizing adaptor", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter %q", cfg.Adapter)
	}
}
