// Package config holds the scanner configuration assembled from command line
// flags and BLESCAN_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// Scanner backends.
const (
	BackendHCI    = "hci"
	BackendBlueZ  = "bluez"
	BackendReplay = "replay"
)

// ErrInvalid is the cause of every validation error.
var ErrInvalid = errors.New("invalid configuration")

// ScanMode trades discovery latency for power, mirroring the usual
// low-power / balanced / low-latency presets.
type ScanMode int

// Scan modes.
const (
	LowPower ScanMode = iota
	Balanced
	LowLatency
)

var modeNames = map[ScanMode]string{
	LowPower:   "low-power",
	Balanced:   "balanced",
	LowLatency: "low-latency",
}

func (m ScanMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseScanMode parses a mode name as printed by String.
func ParseScanMode(s string) (ScanMode, error) {
	for m, n := range modeNames {
		if strings.EqualFold(s, n) {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalid, "unknown scan mode %q", s)
}

// Params returns the HCI scan interval and window, in units of 0.625 msec.
func (m ScanMode) Params() (interval, window uint16) {
	switch m {
	case Balanced:
		return msecToSlots(4096), msecToSlots(1024)
	case LowLatency:
		return msecToSlots(4096), msecToSlots(4096)
	}
	return msecToSlots(5120), msecToSlots(512)
}

// 0x0004 - 0x4000; N * 0.625 msec
func msecToSlots(ms int) uint16 {
	n := ms * 1000 / 625
	switch {
	case n < 0x0004:
		n = 0x0004
	case n > 0x4000:
		n = 0x4000
	}
	return uint16(n)
}

// Config ...
type Config struct {
	Device   string
	DeviceID int
	LogLevel string

	Mode     ScanMode
	Active   bool
	AllowDup bool
	Duration time.Duration

	Name    string
	Addr    string
	MinRSSI int

	Replay string
	Loop   bool
	Record string
}

// Default returns the configuration used when no flag is given.
func Default() *Config {
	return &Config{
		Device:   BackendHCI,
		DeviceID: 0,
		LogLevel: "info",
		Mode:     LowPower,
		AllowDup: true,
	}
}

// FromContext builds the configuration of the running command.
// Global flags are read through the parent context.
func FromContext(c *cli.Context) (*Config, error) {
	cfg := Default()
	if s := c.GlobalString(flgDevice); s != "" {
		cfg.Device = s
	}
	if c.GlobalIsSet(flgDeviceID) {
		cfg.DeviceID = c.GlobalInt(flgDeviceID)
	}
	if s := c.GlobalString(flgLogLevel); s != "" {
		cfg.LogLevel = s
	}
	if s := c.String(flgMode); s != "" {
		m, err := ParseScanMode(s)
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}
	cfg.Active = c.Bool(flgActive)
	if c.IsSet(flgDup) {
		cfg.AllowDup = c.Bool(flgDup)
	}
	cfg.Duration = c.Duration(flgDuration)
	cfg.Name = c.String(flgName)
	cfg.Addr = c.String(flgAddr)
	cfg.MinRSSI = c.Int(flgRSSI)
	cfg.Replay = c.GlobalString(flgReplay)
	cfg.Loop = c.GlobalBool(flgLoop)
	cfg.Record = c.String(flgRecord)
	return cfg, cfg.Validate()
}

// Validate checks the configuration for values no backend can honor.
func (c *Config) Validate() error {
	switch c.Device {
	case BackendHCI, BackendBlueZ:
	case BackendReplay:
		if c.Replay == "" {
			return errors.Wrap(ErrInvalid, "replay backend needs a recording (--replay)")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown device %q", c.Device)
	}
	if c.DeviceID < 0 {
		return errors.Wrapf(ErrInvalid, "negative device id %d", c.DeviceID)
	}
	if c.Device == BackendBlueZ && c.DeviceID != 0 {
		return errors.Wrapf(ErrInvalid, "bluez backend only drives hci0, not hci%d", c.DeviceID)
	}
	if c.Duration < 0 {
		return errors.Wrapf(ErrInvalid, "negative duration %s", c.Duration)
	}
	if c.MinRSSI != 0 && (c.MinRSSI < -127 || c.MinRSSI > 20) {
		return errors.Wrapf(ErrInvalid, "rssi floor %d out of range [-127, 20]", c.MinRSSI)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalid, "log level %q", c.LogLevel)
	}
	return nil
}

// Logger returns a logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	return l
}
