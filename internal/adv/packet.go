package adv

import (
	"encoding/binary"

	"github.com/go-ble/ble"
)

// Packet is an utility to craft or parse advertising data.
// Refer to Supplement to Bluetooth Core Specification | CSSv6, Part A
type Packet []byte

// Field returns the field data (excluding the initial length and type byte).
// It returns nil, if the specified field is not found or the packet is
// truncated before it.
func (p Packet) Field(typ byte) []byte {
	b := p
	for len(b) > 0 {
		l := int(b[0])
		if l == 0 {
			// Zero length marks the end of the significant part.
			return nil
		}
		if len(b) < 1+l {
			return nil
		}
		if b[1] == typ {
			return b[2 : 1+l]
		}
		b = b[1+l:]
	}
	return nil
}

// Flags returns the value of the Flags field.
func (p Packet) Flags() (byte, bool) {
	b := p.Field(Flags)
	if len(b) < 1 {
		return 0, false
	}
	return b[0], true
}

// LocalName prefers the complete name over the shortened one.
func (p Packet) LocalName() string {
	if b := p.Field(CompleteName); b != nil {
		return string(b)
	}
	return string(p.Field(ShortName))
}

// TxPower ...
func (p Packet) TxPower() (int, bool) {
	b := p.Field(TxPower)
	if len(b) < 1 {
		return 0, false
	}
	return int(int8(b[0])), true
}

// UUIDs returns all advertised service UUIDs, complete or not.
func (p Packet) UUIDs() []ble.UUID {
	var u []ble.UUID
	for _, f := range []struct {
		typ byte
		w   int
	}{
		{SomeUUID16, 2}, {AllUUID16, 2},
		{SomeUUID32, 4}, {AllUUID32, 4},
		{SomeUUID128, 16}, {AllUUID128, 16},
	} {
		if b := p.Field(f.typ); b != nil {
			u = uuidList(u, b, f.w)
		}
	}
	return u
}

// ManufacturerData returns the raw manufacturer specific data, company ID included.
func (p Packet) ManufacturerData() []byte {
	return p.Field(ManufacturerData)
}

// CompanyID extracts the little-endian company identifier leading md.
func CompanyID(md []byte) (uint16, bool) {
	if len(md) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(md), true
}

// AppendField appends a BLE advertising packet field.
func (p Packet) AppendField(typ byte, b []byte) Packet {
	p = append(p, byte(len(b)+1))
	p = append(p, typ)
	return append(p, b...)
}

// AppendFlags appends a flag field to the packet.
func (p Packet) AppendFlags(f byte) Packet {
	return p.AppendField(Flags, []byte{f})
}

// AppendCompleteName appends a name field to the packet.
func (p Packet) AppendCompleteName(n string) Packet {
	return p.AppendField(CompleteName, []byte(n))
}

// AppendTxPower appends a Tx power level field to the packet.
func (p Packet) AppendTxPower(dbm int) Packet {
	return p.AppendField(TxPower, []byte{byte(int8(dbm))})
}

// AppendManufacturerData appends raw manufacturer data, which already carries
// its company ID.
func (p Packet) AppendManufacturerData(md []byte) Packet {
	return p.AppendField(ManufacturerData, md)
}

// AppendUUID appends a complete-list service UUID field sized to u.
func (p Packet) AppendUUID(u ble.UUID) Packet {
	switch len(u) {
	case 2:
		return p.AppendField(AllUUID16, u)
	case 4:
		return p.AppendField(AllUUID32, u)
	}
	return p.AppendField(AllUUID128, u)
}

// Join returns the advertising data followed by the scan response, so that
// fields from both can be looked up. Padding after the significant part of
// data is dropped.
func Join(data, scanResp []byte) Packet {
	p := make(Packet, 0, len(data)+len(scanResp))
	p = append(p, significant(data)...)
	return append(p, significant(scanResp)...)
}

func significant(b []byte) []byte {
	n := 0
	for n < len(b) && b[n] != 0 && n+1+int(b[n]) <= len(b) {
		n += 1 + int(b[n])
	}
	return b[:n]
}

func uuidList(u []ble.UUID, d []byte, w int) []ble.UUID {
	for len(d) >= w {
		v := make(ble.UUID, w)
		copy(v, d[:w])
		u = append(u, v)
		d = d[w:]
	}
	return u
}
