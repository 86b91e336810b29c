// Package scan drives a scanner on behalf of a screen: it starts and stops
// scanning, filters what comes back, and renders reports into a Sink.
package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/adv"
	"github.com/blescan/blescan/internal/config"
	"github.com/blescan/blescan/internal/device"
)

var (
	// ErrScanning is returned by Start while a scan is running.
	ErrScanning = errors.New("already scanning")

	// ErrNotScanning is returned by Stop while no scan is running.
	ErrNotScanning = errors.New("not scanning")
)

// Lines written to the sink when scanning starts and stops.
const (
	StartLine = "Start Scanning \n"
	StopLine  = "Stopped Scanning \n"
)

// Settings control what a session reports.
type Settings struct {
	AllowDup bool
	Filter   adv.Filter
}

// SettingsFrom builds settings from the filter flags of cfg.
func SettingsFrom(cfg *config.Config) Settings {
	var fs []adv.Filter
	if cfg.Name != "" {
		fs = append(fs, adv.NameFilter(cfg.Name))
	}
	if cfg.Addr != "" {
		fs = append(fs, adv.AddrFilter(cfg.Addr))
	}
	if cfg.MinRSSI != 0 {
		fs = append(fs, adv.RSSIFilter(cfg.MinRSSI))
	}
	return Settings{AllowDup: cfg.AllowDup, Filter: adv.All(fs...)}
}

// Session toggles scanning on a device. At most one scan runs at a time;
// Stop always cancels the scan the last Start launched.
type Session struct {
	dev      device.Scanner
	settings Settings
	sink     Sink
	log      logrus.FieldLogger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	seen     map[string]struct{}
	onState  []func(scanning bool)
	onReport []func(r adv.Report)
}

// NewSession ...
func NewSession(dev device.Scanner, settings Settings, sink Sink, log logrus.FieldLogger) *Session {
	done := make(chan struct{})
	close(done)
	return &Session{
		dev:      dev,
		settings: settings,
		sink:     sink,
		log:      log.WithField("component", "scan"),
		done:     done,
		seen:     make(map[string]struct{}),
	}
}

// OnState registers f to be called whenever scanning starts or stops.
func (s *Session) OnState(f func(scanning bool)) {
	s.mu.Lock()
	s.onState = append(s.onState, f)
	s.mu.Unlock()
}

// OnReport registers f to be called with every report that passed the filter.
func (s *Session) OnReport(f func(r adv.Report)) {
	s.mu.Lock()
	s.onReport = append(s.onReport, f)
	s.mu.Unlock()
}

// Start clears the sink and starts scanning in the background.
// The scan ends on Stop, or when ctx is done.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrScanning
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	prev, done := s.done, make(chan struct{})
	s.cancel, s.done, s.err = cancel, done, nil
	s.seen = make(map[string]struct{})
	s.sink.Reset(StartLine)
	s.mu.Unlock()

	s.log.WithField("allowDup", s.settings.AllowDup).Debug("scan started")
	s.notify(true)
	go s.run(ctx, gen, prev, done)
	return nil
}

// Stop ends the running scan. It does not wait for the backend to wind down;
// reports arriving after Stop are dropped.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrNotScanning
	}
	s.cancel()
	s.cancel = nil
	s.sink.Append(StopLine)
	s.mu.Unlock()

	s.log.Debug("scan stopped")
	s.notify(false)
	return nil
}

// Scanning reports whether a scan is running.
func (s *Session) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Seen returns the number of distinct devices reported since the last Start.
func (s *Session) Seen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Done is closed when the goroutine of the latest scan has exited.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the backend error that ended the latest scan, if any.
// Cancellation and deadlines are not errors.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops scanning, waits for the backend and closes it.
func (s *Session) Close() error {
	if err := s.Stop(); err != nil && err != ErrNotScanning {
		return err
	}
	<-s.Done()
	return s.dev.Close()
}

func (s *Session) run(ctx context.Context, gen uint64, prev <-chan struct{}, done chan struct{}) {
	defer close(done)

	// Wait for the previous scan to release the device.
	<-prev

	var err error
	if ctx.Err() == nil {
		err = s.dev.Scan(ctx, s.settings.AllowDup, func(r adv.Report) {
			s.deliver(gen, r)
		})
	}
	switch errors.Cause(err) {
	case nil, context.Canceled, context.DeadlineExceeded:
		err = nil
	default:
		s.log.WithError(err).Error("can't scan")
	}

	s.mu.Lock()
	if s.gen == gen {
		s.err = err
	}
	if s.gen != gen || s.cancel == nil {
		// Stopped by the user.
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.sink.Append(StopLine)
	s.mu.Unlock()

	s.notify(false)
}

func (s *Session) deliver(gen uint64, r adv.Report) {
	s.mu.Lock()
	if s.gen != gen || s.cancel == nil {
		s.mu.Unlock()
		return
	}
	if f := s.settings.Filter; f != nil && !f(r) {
		s.mu.Unlock()
		return
	}
	s.seen[r.Addr] = struct{}{}
	s.sink.Append(Format(r))
	hooks := s.onReport
	s.mu.Unlock()

	if id, ok := adv.CompanyID(r.ManufacturerData); ok {
		s.log.WithField("addr", r.Addr).WithField("company", fmt.Sprintf("0x%04X", id)).Debug("manufacturer data")
	}

	for _, f := range hooks {
		f(r)
	}
}

func (s *Session) notify(scanning bool) {
	s.mu.Lock()
	obs := s.onState
	s.mu.Unlock()
	for _, f := range obs {
		f(scanning)
	}
}
