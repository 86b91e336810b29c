package scan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/blescan/blescan/internal/adv"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		r    adv.Report
		want string
	}{
		{
			adv.Report{Name: "Thermo", Addr: "aa:bb:cc:dd:ee:01", Type: adv.TypeLE, RSSI: -58},
			"--- Thermo --- \ndevice address: aa:bb:cc:dd:ee:01\ndevice type: 2\nrssi: -58\n\n",
		},
		{
			adv.Report{Addr: "aa:bb:cc:dd:ee:02", Type: adv.TypeDual, RSSI: -90},
			"--- null --- \ndevice address: aa:bb:cc:dd:ee:02\ndevice type: 3\nrssi: -90\n\n",
		},
	}
	for _, tt := range tests {
		if got := Format(tt.r); got != tt.want {
			t.Errorf("Format() = %q; want %q", got, tt.want)
		}
	}
}

func TestBufferTrim(t *testing.T) {
	b := NewBuffer(16)
	b.Reset("line one\n")
	b.Append("line two\n")
	b.Append("line three\n")

	got := b.String()
	if len(got) > 16 {
		t.Errorf("buffer holds %d bytes; max 16", len(got))
	}
	if got != "line three\n" {
		t.Errorf("buffer = %q; want whole trailing lines", got)
	}
}

func TestBufferChangedCoalesces(t *testing.T) {
	b := NewBuffer(0)
	b.Append("a")
	b.Append("b")

	select {
	case <-b.Changed():
	default:
		t.Fatal("no change signaled")
	}
	select {
	case <-b.Changed():
		t.Fatal("changes were not coalesced")
	default:
	}
}

func TestWriterSink(t *testing.T) {
	var out bytes.Buffer
	ws := NewWriterSink(&out)
	ws.Reset(StartLine)
	ws.Append(StopLine)
	if got := out.String(); got != StartLine+StopLine || !strings.HasPrefix(got, "Start") {
		t.Errorf("output = %q", got)
	}
}

func TestBufferWrite(t *testing.T) {
	b := NewBuffer(0)
	b.Reset(StartLine)
	n, err := b.Write([]byte("level=warning msg=\"can't scan\"\n"))
	if err != nil || n != 31 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := b.String(); !strings.HasPrefix(got, StartLine) || !strings.HasSuffix(got, "\"can't scan\"\n") {
		t.Errorf("view = %q", got)
	}
}
