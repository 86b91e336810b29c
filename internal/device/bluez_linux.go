package device

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/blescan/blescan/internal/adv"
	"github.com/blescan/blescan/internal/config"
)

type bluezScanner struct {
	sync.Mutex

	adapter *bluetooth.Adapter
	log     logrus.FieldLogger
}

// newBlueZ drives the default adapter, hci0; config rejects other ids.
func newBlueZ(cfg *config.Config, log logrus.FieldLogger) (Scanner, error) {
	a := bluetooth.DefaultAdapter
	if err := a.Enable(); err != nil {
		return nil, errors.Wrap(err, "can't enable adapter")
	}
	log.Info("bluez adapter ready")
	return &bluezScanner{adapter: a, log: log}, nil
}

// Scan runs the adapter's blocking scan on its own goroutine and stops it
// when ctx is done. Callbacks never outlive Scan.
func (s *bluezScanner) Scan(ctx context.Context, allowDup bool, h Handler) error {
	s.Lock()
	defer s.Unlock()

	h = dedup(allowDup, h)
	errc := make(chan error, 1)
	go func() {
		errc <- s.adapter.Scan(func(_ *bluetooth.Adapter, res bluetooth.ScanResult) {
			h(fromScanResult(res))
		})
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "can't scan")
	case <-ctx.Done():
		if err := s.adapter.StopScan(); err != nil {
			s.log.WithError(err).Warn("can't stop scan")
		}
		<-errc
		return ctx.Err()
	}
}

func (s *bluezScanner) Close() error {
	return nil
}

func fromScanResult(res bluetooth.ScanResult) adv.Report {
	var md []byte
	if mds := res.ManufacturerData(); len(mds) > 0 {
		md = manufacturerData(mds[0].CompanyID, mds[0].Data)
	}
	return bluezReport(res.Address.String(), res.LocalName(), int(res.RSSI), md)
}

// bluezReport builds a report from the fields BlueZ exposes. It has no
// advertising flags or connectable bit, so reports are LE and not connectable.
func bluezReport(addr, name string, rssi int, md []byte) adv.Report {
	return adv.Report{
		Name:             name,
		Addr:             strings.ToLower(addr),
		Type:             adv.TypeLE,
		RSSI:             rssi,
		ManufacturerData: md,
		Time:             time.Now(),
	}
}

// manufacturerData puts the company id back in front of data, as it is on air.
func manufacturerData(companyID uint16, data []byte) []byte {
	return append([]byte{byte(companyID), byte(companyID >> 8)}, data...)
}
