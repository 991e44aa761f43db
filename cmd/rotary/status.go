package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/as5600"
	"github.com/mklimuk/rotary/cmd/rotary/console"
)

type statusReport struct {
	Register        string `yaml:"register"`
	MagnetDetected  bool   `yaml:"magnet_detected"`
	MagnetTooWeak   bool   `yaml:"magnet_too_weak"`
	MagnetTooStrong bool   `yaml:"magnet_too_strong"`
	Condition       string `yaml:"condition"`
}

func newStatusReport(s as5600.Status) statusReport {
	return statusReport{
		Register:        s.String(),
		MagnetDetected:  s.MagnetDetected(),
		MagnetTooWeak:   s.MagnetTooWeak(),
		MagnetTooStrong: s.MagnetTooStrong(),
		Condition:       s.Condition().String(),
	}
}

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "read the magnet status flags",
	Flags: append(busFlags(),
		&cli.BoolFlag{Name: "yaml", Usage: "print the status as YAML"},
	),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		bus, closeBus, err := openBus(c.Context, cfg)
		if err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer closeBus()

		status, err := as5600.NewAS5600(bus).ReadStatus(c.Context)
		if err != nil {
			return console.Exit(1, "error reading status: %s", console.Red(err))
		}
		report := newStatusReport(status)
		if c.Bool("yaml") {
			return printYAML(report)
		}
		console.PInfof(console.PictoMagnet, "%s", console.White(report.Condition))
		console.Printf("detected:   %s\n", console.Flag(report.MagnetDetected, console.Green))
		console.Printf("too weak:   %s\n", console.Flag(report.MagnetTooWeak, console.Yellow))
		console.Printf("too strong: %s\n", console.Flag(report.MagnetTooStrong, console.Yellow))
		return nil
	},
}
