package device

import (
	"context"
	"strings"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/adv"
	"github.com/blescan/blescan/internal/config"
)

// go-ble reports this Tx power level when the advertisement carries none.
const txPowerNotAvailable = 127

type hciScanner struct {
	dev *linux.Device
	log logrus.FieldLogger
}

func newHCI(cfg *config.Config, log logrus.FieldLogger) (Scanner, error) {
	d, err := linux.NewDevice(
		ble.OptDeviceID(cfg.DeviceID),
		ble.OptScanParams(scanParams(cfg)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "can't new device")
	}
	log.WithField("addr", d.Address()).WithField("mode", cfg.Mode).Info("hci device ready")
	return &hciScanner{dev: d, log: log}, nil
}

func scanParams(cfg *config.Config) cmd.LESetScanParameters {
	interval, window := cfg.Mode.Params()
	typ := uint8(0x00)
	if cfg.Active {
		typ = 0x01
	}
	return cmd.LESetScanParameters{
		LEScanType:           typ,      // 0x00: passive, 0x01: active
		LEScanInterval:       interval, // 0x0004 - 0x4000; N * 0.625msec
		LEScanWindow:         window,   // 0x0004 - 0x4000; N * 0.625msec
		OwnAddressType:       0x00,     // 0x00: public, 0x01: random
		ScanningFilterPolicy: 0x00,     // 0x00: accept all, 0x01: ignore non-white-listed.
	}
}

func (s *hciScanner) Scan(ctx context.Context, allowDup bool, h Handler) error {
	err := s.dev.Scan(ctx, allowDup, func(a ble.Advertisement) {
		h(fromAdvertisement(a))
	})
	if err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "can't scan")
	}
	return err
}

func (s *hciScanner) Close() error {
	return errors.Wrap(s.dev.Stop(), "can't stop device")
}

// rawAdvertisement is implemented by go-ble's HCI advertisements, which keep
// the advertising data and scan response as received.
type rawAdvertisement interface {
	Data() []byte
	ScanResponse() []byte
}

func fromAdvertisement(a ble.Advertisement) adv.Report {
	addr := strings.ToLower(a.Addr().String())
	if raw, ok := a.(rawAdvertisement); ok && len(raw.Data())+len(raw.ScanResponse()) > 0 {
		r := adv.FromPacket(addr, a.RSSI(), a.Connectable(), adv.Join(raw.Data(), raw.ScanResponse()))
		r.Time = time.Now()
		return r
	}

	r := adv.Report{
		Name:             a.LocalName(),
		Addr:             addr,
		Type:             adv.TypeLE,
		RSSI:             a.RSSI(),
		Connectable:      a.Connectable(),
		ManufacturerData: a.ManufacturerData(),
		Services:         a.Services(),
		Time:             time.Now(),
	}
	if p := a.TxPowerLevel(); p != txPowerNotAvailable {
		r.TxPower, r.HasTxPower = p, true
	}
	return r
}
