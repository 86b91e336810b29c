// Package device provides the BLE scanning backends.
package device

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/adv"
	"github.com/blescan/blescan/internal/config"
)

var (
	// ErrUnsupported is returned when a backend is not available on this platform.
	ErrUnsupported = errors.New("backend not supported on this platform")

	// ErrUnknownBackend is returned for a backend name New doesn't know.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Handler receives scan reports. It is called from the scanning goroutine.
type Handler func(r adv.Report)

// Scanner discovers advertising devices.
type Scanner interface {
	// Scan reports advertisements to h until ctx is done, and returns ctx.Err().
	// Duplicated advertisements are filtered out if allowDup is false.
	Scan(ctx context.Context, allowDup bool, h Handler) error

	// Close releases the underlying device.
	Close() error
}

// New returns the scanner backend named by cfg.Device.
func New(cfg *config.Config, log logrus.FieldLogger) (Scanner, error) {
	log = log.WithField("component", "device").WithField("backend", cfg.Device)
	switch cfg.Device {
	case config.BackendHCI:
		return newHCI(cfg, log)
	case config.BackendBlueZ:
		return newBlueZ(cfg, log)
	case config.BackendReplay:
		return OpenReplay(cfg.Replay, cfg.Loop, log)
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "%q", cfg.Device)
}

// dedup drops reports from addresses already seen, unless allowDup is set.
func dedup(allowDup bool, h Handler) Handler {
	if allowDup {
		return h
	}
	seen := make(map[string]bool)
	return func(r adv.Report) {
		if seen[r.Addr] {
			return
		}
		seen[r.Addr] = true
		h(r)
	}
}
