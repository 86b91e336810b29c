package adv

import (
	"bytes"
	"testing"

	"github.com/go-ble/ble"
)

func TestPacketFields(t *testing.T) {
	p := Packet{
		0x02, Flags, 0x06,
		0x05, CompleteName, 'T', 'a', 'g', '1',
		0x02, TxPower, 0xF4,
		0x03, AllUUID16, 0x0F, 0x18,
		0x05, ManufacturerData, 0x99, 0x04, 0x05, 0x12,
	}

	if f, ok := p.Flags(); !ok || f != 0x06 {
		t.Errorf("Flags() = %#x, %v; want 0x06, true", f, ok)
	}
	if got := p.LocalName(); got != "Tag1" {
		t.Errorf("LocalName() = %q; want Tag1", got)
	}
	if pwr, ok := p.TxPower(); !ok || pwr != -12 {
		t.Errorf("TxPower() = %d, %v; want -12, true", pwr, ok)
	}
	u := p.UUIDs()
	if len(u) != 1 || !u[0].Equal(ble.UUID16(0x180F)) {
		t.Errorf("UUIDs() = %v; want [180f]", u)
	}
	if id, ok := CompanyID(p.ManufacturerData()); !ok || id != 0x0499 {
		t.Errorf("CompanyID() = %#x, %v; want 0x0499, true", id, ok)
	}
	if md := p.ManufacturerData(); !bytes.Equal(md, []byte{0x99, 0x04, 0x05, 0x12}) {
		t.Errorf("ManufacturerData() = % X", md)
	}
}

func TestPacketShortNameFallback(t *testing.T) {
	p := Packet(nil).AppendField(ShortName, []byte("Sh"))
	if got := p.LocalName(); got != "Sh" {
		t.Errorf("LocalName() = %q; want Sh", got)
	}
	p = p.AppendCompleteName("Complete")
	if got := p.LocalName(); got != "Complete" {
		t.Errorf("LocalName() = %q; want Complete", got)
	}
}

func TestPacketMalformed(t *testing.T) {
	tests := []struct {
		name string
		p    Packet
	}{
		{"empty", nil},
		{"truncated length", Packet{0x05, CompleteName, 'a'}},
		{"lone length", Packet{0x02}},
		{"zero terminator", Packet{0x00, 0x05, CompleteName, 'a', 'b', 'c', 'd'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.LocalName(); got != "" {
				t.Errorf("LocalName() = %q; want empty", got)
			}
			if _, ok := tt.p.Flags(); ok {
				t.Errorf("Flags() found in malformed packet")
			}
			if u := tt.p.UUIDs(); len(u) != 0 {
				t.Errorf("UUIDs() = %v; want none", u)
			}
		})
	}
}

func TestPacketUUIDWidths(t *testing.T) {
	u128 := ble.MustParse("00010000-0001-1000-8000-00805F9B34FB")
	p := Packet(nil).
		AppendUUID(ble.UUID16(0x180D)).
		AppendUUID(ble.UUID{0x01, 0x02, 0x03, 0x04}).
		AppendUUID(u128)

	u := p.UUIDs()
	if len(u) != 3 {
		t.Fatalf("UUIDs() returned %d uuids; want 3", len(u))
	}
	if !u[0].Equal(ble.UUID16(0x180D)) || u[1].Len() != 4 || !u[2].Equal(u128) {
		t.Errorf("UUIDs() = %v", u)
	}
}

func TestJoin(t *testing.T) {
	data := []byte{0x02, Flags, 0x06, 0x00, 0x00}
	resp := []byte{0x05, CompleteName, 'T', 'a', 'g', '1'}

	p := Join(data, resp)
	if want := (Packet{0x02, Flags, 0x06, 0x05, CompleteName, 'T', 'a', 'g', '1'}); !bytes.Equal(p, want) {
		t.Errorf("Join() = % X; want % X", p, want)
	}
	if got := p.LocalName(); got != "Tag1" {
		t.Errorf("LocalName() = %q; want name from scan response", got)
	}
	if f, ok := p.Flags(); !ok || f != 0x06 {
		t.Errorf("Flags() = %#x, %v", f, ok)
	}
	if p := Join([]byte{0x05, CompleteName, 'a'}, nil); len(p) != 0 {
		t.Errorf("Join() kept truncated field: % X", p)
	}
}

func TestCompanyID(t *testing.T) {
	tests := []struct {
		md []byte
		id uint16
		ok bool
	}{
		{[]byte{0x4C, 0x00, 0x02, 0x15}, 0x004C, true},
		{[]byte{0x99, 0x04}, 0x0499, true},
		{[]byte{0x99}, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		if id, ok := CompanyID(tt.md); id != tt.id || ok != tt.ok {
			t.Errorf("CompanyID(% X) = %#x, %v; want %#x, %v", tt.md, id, ok, tt.id, tt.ok)
		}
	}
}
