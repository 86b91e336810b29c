package device

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/adv"
	"github.com/blescan/blescan/internal/config"
)

const recording = `# two devices, one seen twice
{"at":"0s","addr":"AA:AA:AA:AA:AA:01","rssi":-40,"connectable":true,"data":"0201060509546167310302aafe"}
{"at":"10ms","addr":"aa:aa:aa:aa:aa:02","rssi":-80,"data":"020118"}
{"at":"20ms","addr":"aa:aa:aa:aa:aa:01","rssi":-42,"connectable":true,"data":"0201060509546167310302aafe"}
`

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	return l
}

func writeRecording(t *testing.T, s string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scan.jsonl")
	if err := ioutil.WriteFile(p, []byte(s), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

type collector struct {
	sync.Mutex
	reports []adv.Report
}

func (c *collector) handle(r adv.Report) {
	c.Lock()
	c.reports = append(c.reports, r)
	c.Unlock()
}

func (c *collector) all() []adv.Report {
	c.Lock()
	defer c.Unlock()
	return append([]adv.Report(nil), c.reports...)
}

func TestReplayScan(t *testing.T) {
	r, err := OpenReplay(writeRecording(t, recording), false, quietLog())
	if err != nil {
		t.Fatalf("OpenReplay() = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var c collector
	if err := r.Scan(ctx, true, c.handle); err != context.DeadlineExceeded {
		t.Errorf("Scan() = %v; want deadline exceeded", err)
	}

	got := c.all()
	if len(got) != 3 {
		t.Fatalf("got %d reports; want 3", len(got))
	}
	if got[0].Name != "Tag1" || got[0].Addr != "aa:aa:aa:aa:aa:01" || got[0].RSSI != -40 || got[0].Type != adv.TypeLE {
		t.Errorf("first report = %+v", got[0])
	}
	if got[1].Type != adv.TypeDual || got[1].Name != "" {
		t.Errorf("second report = %+v", got[1])
	}
	if got[2].RSSI != -42 {
		t.Errorf("third report = %+v", got[2])
	}
}

func TestReplayNoDuplicates(t *testing.T) {
	r, err := OpenReplay(writeRecording(t, recording), true, quietLog())
	if err != nil {
		t.Fatalf("OpenReplay() = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	var c collector
	r.Scan(ctx, false, c.handle)
	if got := c.all(); len(got) != 2 {
		t.Errorf("got %d reports; want one per device", len(got))
	}
}

func TestReplayCancel(t *testing.T) {
	es, err := adv.ReadEntries(strings.NewReader(`{"at":"1h","addr":"aa","data":""}`))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewReplay(es, false, quietLog()).Scan(ctx, true, func(adv.Report) {}) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Scan() = %v; want canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Scan() didn't return after cancel")
	}
}

func TestOpenReplayErrors(t *testing.T) {
	if _, err := OpenReplay(filepath.Join(t.TempDir(), "missing"), false, quietLog()); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := OpenReplay(writeRecording(t, "# nothing\n"), false, quietLog()); err == nil {
		t.Error("expected error for empty recording")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Device = "carrier-pigeon"
	if _, err := New(cfg, quietLog()); errors.Cause(err) != ErrUnknownBackend {
		t.Errorf("New() = %v; want ErrUnknownBackend", err)
	}
}

func TestNewReplayBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Device = config.BackendReplay
	cfg.Replay = writeRecording(t, recording)
	s, err := New(cfg, quietLog())
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if _, ok := s.(*Replay); !ok {
		t.Errorf("New() = %T; want *Replay", s)
	}
	s.Close()
}

func TestReplayLoopPacesPasses(t *testing.T) {
	es, err := adv.ReadEntries(strings.NewReader(`{"at":"0s","addr":"aa:aa:aa:aa:aa:01","rssi":-40,"data":"020106"}`))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		gap      time.Duration
		run      time.Duration
		min, max int
	}{
		{20 * time.Millisecond, 110 * time.Millisecond, 2, 8},
		{0, 50 * time.Millisecond, 1, 52},
	}
	for _, tt := range tests {
		r := NewReplay(es, true, quietLog())
		r.Gap = tt.gap
		ctx, cancel := context.WithTimeout(context.Background(), tt.run)
		var c collector
		r.Scan(ctx, true, c.handle)
		cancel()

		if n := len(c.all()); n < tt.min || n > tt.max {
			t.Errorf("gap %v: %d reports in %v; want %d..%d", tt.gap, n, tt.run, tt.min, tt.max)
		}
	}
}

func TestNewReplayDefaultGap(t *testing.T) {
	if r := NewReplay(nil, true, quietLog()); r.Gap != DefaultLoopGap {
		t.Errorf("Gap = %v; want %v", r.Gap, DefaultLoopGap)
	}
}
