package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/cmd/rotary/console"
	"github.com/mklimuk/rotary/pkg/config"
	"github.com/mklimuk/rotary/snsctx"
)

func main() {
	os.Exit(run(os.Args))
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rotary"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, config.Date, config.Commit)
	app.Usage = "AS5600 magnetic rotary encoder cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging and raw adapter dumps",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML config file",
			EnvVars: []string{"ROTARY_CONFIG"},
		},
	}
	app.Before = func(c *cli.Context) error {
		verbose := c.Bool("verbose")
		console.SetupLogger(verbose)
		c.Context = snsctx.SetVerbose(c.Context, verbose)
		return nil
	}
	app.Commands = cli.Commands{
		&angleCmd,
		&statusCmd,
		&watchCmd,
		&mcp2221Cmd,
		&usbCmd,
	}
	return app
}

func run(args []string) int {
	err := newApp().Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			return exerr.ExitCode()
		}
		slog.Error("unexpected error", "error", err)
		return 1
	}
	return 0
}
