package device

import (
	"bytes"
	"testing"

	"github.com/blescan/blescan/internal/adv"
)

func TestBlueZReport(t *testing.T) {
	md := manufacturerData(0x0499, []byte{0x05, 0x12})
	if !bytes.Equal(md, []byte{0x99, 0x04, 0x05, 0x12}) {
		t.Fatalf("manufacturerData() = % X", md)
	}
	if id, ok := adv.CompanyID(md); !ok || id != 0x0499 {
		t.Errorf("CompanyID() = %#x, %v", id, ok)
	}

	r := bluezReport("C4:7C:8D:6A:00:01", "Ruuvi 0001", -71, md)
	if r.Addr != "c4:7c:8d:6a:00:01" || r.Name != "Ruuvi 0001" || r.RSSI != -71 {
		t.Errorf("report = %+v", r)
	}
	if r.Type != adv.TypeLE || r.Connectable || r.Time.IsZero() {
		t.Errorf("report = %+v; want LE, not connectable, timed", r)
	}
	if !bytes.Equal(r.ManufacturerData, md) {
		t.Errorf("ManufacturerData = % X", r.ManufacturerData)
	}
}
