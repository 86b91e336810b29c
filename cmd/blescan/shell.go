package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/blescan/blescan/internal/scan"
)

func cmdShell(c *cli.Context) error {
	cfg, log, err := load(c)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(os.Stdin)
	p := &termPrompter{in: reader, out: os.Stdout}
	sess, err := open(cfg, log, p, scan.NewWriterSink(os.Stdout))
	if err != nil {
		return err
	}
	defer sess.Close()

	sigs := make(chan os.Signal, 1)
	go func() {
		for range sigs {
			fmt.Printf("\n(type quit or q to exit)\n")
		}
	}()
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	return shell(reader, os.Stdout, sess)
}

// toggler starts and stops scanning; *scan.Session implements it.
type toggler interface {
	Start(ctx context.Context) error
	Stop() error
}

// shell reads commands from in until quit or end of input.
func shell(in *bufio.Reader, out io.Writer, t toggler) error {
	fmt.Fprintf(out, "Commands: start, stop, quit\n")
	for {
		fmt.Fprint(out, "blescan > ")
		text, err := in.ReadString('\n')
		if err != nil && text == "" {
			return nil
		}
		switch cmd := strings.TrimSpace(text); cmd {
		case "":
		case "start", "s":
			if err := t.Start(context.Background()); err != nil {
				fmt.Fprintf(out, "%s\n", err)
			}
		case "stop", "x":
			if err := t.Stop(); err != nil {
				fmt.Fprintf(out, "%s\n", err)
			}
		case "quit", "q":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q (start, stop, quit)\n", cmd)
		}
		if err != nil {
			return nil
		}
	}
}
