package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/as5600"
	"github.com/mklimuk/rotary/cmd/rotary/console"
	"github.com/mklimuk/rotary/pkg/config"
)

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "continuously report magnet condition and angle",
	Flags: append(busFlags(),
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Value:   config.Default().Interval,
			Usage:   "poll interval",
		},
	),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()
		bus, closeBus, err := openBus(ctx, cfg)
		if err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer closeBus()

		s := as5600.NewAS5600(bus)
		if err := s.Ping(ctx); err != nil {
			return console.Exit(1, "%s sensor not detected: %s", console.PictoGhost, console.Red(err))
		}
		slog.Debug("watching encoder", "adapter", cfg.Adapter, "interval", cfg.Interval)
		err = as5600.NewMonitor(s).Watch(ctx, cfg.Interval, printReading)
		if err != nil && !errors.Is(err, context.Canceled) {
			return console.Exit(1, "watch error: %s", console.Red(err))
		}
		return nil
	},
}

func printReading(r as5600.Reading, err error) {
	if err != nil {
		console.Errorf("%s", err)
		return
	}
	console.Printf("%s\n", formatReading(r))
}

func formatReading(r as5600.Reading) string {
	ts := console.Faint(r.Time.Format("15:04:05.000"))
	switch r.Condition {
	case as5600.ConditionOK:
		return fmt.Sprintf("%s %s angle: %s %s", ts, console.PictoCompass, console.White(fmt.Sprintf("%6.2f", r.Angle)), r.Compass)
	case as5600.ConditionNoMagnet:
		return fmt.Sprintf("%s %s %s", ts, console.PictoStop, console.Red(r.Condition))
	default:
		return fmt.Sprintf("%s %s %s", ts, console.PictoMagnet, console.Yellow(r.Condition))
	}
}
