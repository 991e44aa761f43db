package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/as5600"
	"github.com/mklimuk/rotary/cmd/rotary/console"
)

var angleCmd = cli.Command{
	Name:    "angle",
	Aliases: []string{"ang"},
	Usage:   "read the current angle",
	Flags: append(busFlags(),
		&cli.BoolFlag{Name: "raw", Usage: "also print the 12-bit register values"},
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

		s := as5600.NewAS5600(bus)
		deg, err := s.ReadAngle(c.Context)
		if err != nil {
			return console.Exit(1, "error reading angle: %s", console.Red(err))
		}
		console.PInfof(console.PictoCompass, "%s° %s", console.White(fmt.Sprintf("%.2f", deg)), as5600.CompassFor(deg))
		if !c.Bool("raw") {
			return nil
		}
		scaled, err := s.ReadRawAngle(c.Context)
		if err != nil {
			return console.Exit(1, "error reading angle register: %s", console.Red(err))
		}
		raw, err := s.ReadRawAngleRegister(c.Context)
		if err != nil {
			return console.Exit(1, "error reading raw angle register: %s", console.Red(err))
		}
		console.Printf("ANGLE:     %s\nRAW ANGLE: %s\n", console.White(scaled), console.White(raw))
		return nil
	},
}
