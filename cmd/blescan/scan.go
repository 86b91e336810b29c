package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/blescan/blescan/internal/adv"
	"github.com/blescan/blescan/internal/config"
	"github.com/blescan/blescan/internal/preflight"
	"github.com/blescan/blescan/internal/scan"
)

func cmdScan(c *cli.Context) error {
	cfg, log, err := load(c)
	if err != nil {
		return err
	}
	sess, err := open(cfg, log, newTermPrompter(os.Stdin, os.Stdout), scan.NewWriterSink(os.Stdout))
	if err != nil {
		return err
	}

	if cfg.Record != "" {
		f, err := os.OpenFile(cfg.Record, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			sess.Close()
			return errors.Wrap(err, "can't open recording")
		}
		defer f.Close()
		rec := adv.NewRecorder(f)
		sess.OnReport(func(r adv.Report) {
			if err := rec.Record(r); err != nil {
				log.WithError(err).Warn("can't record report")
			}
		})
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if cfg.Duration > 0 {
		fmt.Printf("Scanning for %s...\n", cfg.Duration)
		ctx, cancel = context.WithTimeout(context.Background(), cfg.Duration)
	} else {
		fmt.Printf("Scanning until interrupted...\n")
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()
	ctx = ble.WithSigHandler(ctx, cancel)

	if err := sess.Start(ctx); err != nil {
		return err
	}
	<-sess.Done()
	fmt.Printf("%d devices found\n", sess.Seen())
	return finish(ctx, sess)
}

// finish closes a session whose scan has ended and reports how it ended.
func finish(ctx context.Context, sess *scan.Session) error {
	if err := sess.Close(); err != nil {
		return chkErr(err)
	}
	if err := sess.Err(); err != nil {
		return err
	}
	return chkErr(ctx.Err())
}

func cmdCheck(c *cli.Context) error {
	cfg, log, err := load(c)
	if err != nil {
		return err
	}
	r, err := preflight.NewChecker(log).Inspect(cfg.Device, cfg.DeviceID)
	if err != nil {
		return err
	}

	fmt.Printf("backend:    %s\n", r.Backend)
	if r.Backend != config.BackendReplay {
		a := r.Adapter
		fmt.Printf("adapter:    %s present=%v soft-blocked=%v hard-blocked=%v\n",
			a.Name, a.Present, a.SoftBlocked, a.HardBlocked)
		p := r.Permission
		fmt.Printf("permission: %s required=%v granted=%v\n", p.Name, p.Required, p.Granted)
	}
	fmt.Printf("ready:      %v\n", r.Ready())
	return nil
}
