package adv

import (
	"strings"
	"time"

	"github.com/go-ble/ble"
)

// DeviceType is the transport a remote device supports.
type DeviceType int

// Device types, numbered after the platform convention.
const (
	TypeUnknown DeviceType = iota
	TypeClassic
	TypeLE
	TypeDual
)

func (t DeviceType) String() string {
	switch t {
	case TypeClassic:
		return "classic"
	case TypeLE:
		return "le"
	case TypeDual:
		return "dual"
	}
	return "unknown"
}

// TypeFromFlags derives the device type from the advertised Flags field.
// Advertisements without flags come from an LE scan and are reported as LE.
func TypeFromFlags(f byte, ok bool) DeviceType {
	switch {
	case !ok:
		return TypeLE
	case f&FlagLEOnly != 0:
		return TypeLE
	case f&(FlagBothController|FlagBothHost) != 0:
		return TypeDual
	}
	return TypeLE
}

// Report is a single advertisement observed during a scan.
type Report struct {
	Name             string
	Addr             string
	Type             DeviceType
	RSSI             int
	Connectable      bool
	TxPower          int
	HasTxPower       bool
	ManufacturerData []byte
	Services         []ble.UUID
	Time             time.Time

	// Raw holds the advertising data when the backend exposes it.
	Raw Packet
}

// FromPacket fills a report from raw advertising data.
func FromPacket(addr string, rssi int, connectable bool, p Packet) Report {
	r := Report{
		Name:             p.LocalName(),
		Addr:             strings.ToLower(addr),
		Type:             TypeFromFlags(p.Flags()),
		RSSI:             rssi,
		Connectable:      connectable,
		ManufacturerData: p.ManufacturerData(),
		Services:         p.UUIDs(),
		Raw:              p,
	}
	r.TxPower, r.HasTxPower = p.TxPower()
	return r
}

// Packet returns the raw advertising data of r, rebuilding it from the
// decoded fields when the backend did not provide it.
func (r Report) Packet() Packet {
	if len(r.Raw) > 0 {
		return r.Raw
	}
	var p Packet
	switch r.Type {
	case TypeLE:
		p = p.AppendFlags(FlagGeneralDiscoverable | FlagLEOnly)
	case TypeDual:
		p = p.AppendFlags(FlagGeneralDiscoverable | FlagBothController | FlagBothHost)
	}
	if r.Name != "" {
		p = p.AppendCompleteName(r.Name)
	}
	if r.HasTxPower {
		p = p.AppendTxPower(r.TxPower)
	}
	for _, u := range r.Services {
		p = p.AppendUUID(u)
	}
	if len(r.ManufacturerData) > 0 {
		p = p.AppendManufacturerData(r.ManufacturerData)
	}
	return p
}

// Filter returns true if the report matches specified condition.
type Filter func(r Report) bool

// NameFilter matches reports whose local name equals name, ignoring case.
func NameFilter(name string) Filter {
	return func(r Report) bool {
		return strings.EqualFold(r.Name, name)
	}
}

// AddrFilter matches reports from addr, ignoring case.
func AddrFilter(addr string) Filter {
	return func(r Report) bool {
		return strings.EqualFold(r.Addr, addr)
	}
}

// RSSIFilter matches reports at least as strong as min dBm.
func RSSIFilter(min int) Filter {
	return func(r Report) bool {
		return r.RSSI >= min
	}
}

// All combines filters; nil filters are skipped and no filters match everything.
func All(fs ...Filter) Filter {
	var live []Filter
	for _, f := range fs {
		if f != nil {
			live = append(live, f)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return func(r Report) bool {
		for _, f := range live {
			if !f(r) {
				return false
			}
		}
		return true
	}
}
