package main

import (
	"context"
	"os"

	"github.com/urfave/cli"

	"github.com/blescan/blescan/internal/preflight"
	"github.com/blescan/blescan/internal/scan"
	"github.com/blescan/blescan/internal/ui/gui"
	"github.com/blescan/blescan/internal/ui/tui"
)

func cmdTUI(c *cli.Context) error {
	cfg, log, err := load(c)
	if err != nil {
		return err
	}
	// Notices go to the terminal before the screen takes it over.
	buf := scan.NewBuffer(scan.DefaultScrollback)
	sess, err := open(cfg, log, newTermPrompter(os.Stdin, os.Stdout), buf)
	if err != nil {
		return err
	}
	defer sess.Close()

	// Log lines would tear the screen; show them in the view instead.
	log.SetOutput(buf)
	return tui.Run(context.Background(), sess, buf)
}

func cmdGUI(c *cli.Context) error {
	cfg, log, err := load(c)
	if err != nil {
		return err
	}
	gui.Run(context.Background(), func(p preflight.Prompter, buf *scan.Buffer) (*scan.Session, error) {
		return open(cfg, log, p, buf)
	}, log)
	return nil
}
