package device

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/adv"
)

// DefaultLoopGap is the pause between two passes of a looping replay.
const DefaultLoopGap = time.Second

// Replay plays back a recorded scan, honoring the recorded offsets.
type Replay struct {
	// Gap is the pause after the last report of a pass before the next
	// pass starts. Values below a millisecond are raised to one.
	Gap time.Duration

	entries []adv.Entry
	loop    bool
	log     logrus.FieldLogger
}

// OpenReplay loads the recording at path.
func OpenReplay(path string, loop bool, log logrus.FieldLogger) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open recording")
	}
	defer f.Close()

	es, err := adv.ReadEntries(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load %s", path)
	}
	if len(es) == 0 {
		return nil, errors.Errorf("recording %s is empty", path)
	}
	log.WithField("reports", len(es)).WithField("path", path).Info("recording loaded")
	return NewReplay(es, loop, log), nil
}

// NewReplay returns a replay of entries.
func NewReplay(entries []adv.Entry, loop bool, log logrus.FieldLogger) *Replay {
	return &Replay{Gap: DefaultLoopGap, entries: entries, loop: loop, log: log}
}

// Scan emits the recorded reports, then idles like a quiet radio until ctx is done.
func (r *Replay) Scan(ctx context.Context, allowDup bool, h Handler) error {
	h = dedup(allowDup, h)
	gap := r.Gap
	if gap < time.Millisecond {
		gap = time.Millisecond
	}
	for {
		start := time.Now()
		var last time.Duration
		for _, e := range r.entries {
			off, _ := e.Offset()
			if off > last {
				last = off
			}
			if err := sleep(ctx, time.Until(start.Add(off))); err != nil {
				return err
			}
			rep, err := e.Report()
			if err != nil {
				r.log.WithError(err).WithField("addr", e.Addr).Warn("skipping bad report")
				continue
			}
			rep.Time = time.Now()
			h(rep)
		}
		if !r.loop {
			break
		}
		if err := sleep(ctx, time.Until(start.Add(last+gap))); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

// Close ...
func (r *Replay) Close() error {
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
