package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/blescan/blescan/internal/config"
	"github.com/blescan/blescan/internal/device"
	"github.com/blescan/blescan/internal/preflight"
	"github.com/blescan/blescan/internal/scan"
)

func main() {
	app := cli.NewApp()

	app.Name = "blescan"
	app.Usage = "Scan for Bluetooth Low Energy devices"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp
	app.Flags = config.GlobalFlags()

	app.Commands = []cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "Scan surrounding devices for a duration",
			Action:  cmdScan,
			Flags:   config.TimedScanFlags(),
		},
		{
			Name:    "shell",
			Aliases: []string{"sh"},
			Usage:   "Start and stop scanning interactively",
			Action:  cmdShell,
			Flags:   config.ScanFlags(),
		},
		{
			Name:   "tui",
			Usage:  "Scanner screen in the terminal",
			Action: cmdTUI,
			Flags:  config.ScanFlags(),
		},
		{
			Name:   "gui",
			Usage:  "Scanner window",
			Action: cmdGUI,
			Flags:  config.ScanFlags(),
		},
		{
			Name:   "check",
			Usage:  "Check the adapter and permissions without scanning",
			Action: cmdCheck,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "blescan: %s\n", err)
		os.Exit(1)
	}
}

func load(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.FromContext(c)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(), nil
}

// open runs the permission flow and opens the configured backend. A failed
// preflight only limits functionality; a backend that can't open is an error.
func open(cfg *config.Config, log logrus.FieldLogger, p preflight.Prompter, sink scan.Sink) (*scan.Session, error) {
	r, err := preflight.NewChecker(log).Run(cfg.Device, cfg.DeviceID, p)
	if err != nil {
		log.WithError(err).Warn("can't run preflight checks")
	} else if !r.Ready() {
		log.WithField("adapter", r.Adapter.Name).Warn("scanning may not work")
	}

	dev, err := device.New(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "can't open scanner")
	}
	return scan.NewSession(dev, scan.SettingsFrom(cfg), sink, log), nil
}

func chkErr(err error) error {
	switch errors.Cause(err) {
	case context.DeadlineExceeded:
		// Specified duration passed, which is the expected case.
		return nil
	case context.Canceled:
		fmt.Printf("\n(Canceled)\n")
		return nil
	}
	return err
}
