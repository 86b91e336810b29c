package adv

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Entry is one line of a recorded scan.
type Entry struct {
	At          string `json:"at"`
	Addr        string `json:"addr"`
	RSSI        int    `json:"rssi"`
	Connectable bool   `json:"connectable"`
	Data        string `json:"data"`
}

// Offset returns the time since the start of the recording.
func (e Entry) Offset() (time.Duration, error) {
	if e.At == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.At)
	return d, errors.Wrapf(err, "bad offset %q", e.At)
}

// Report decodes the entry.
func (e Entry) Report() (Report, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(e.Data, " ", ""))
	if err != nil {
		return Report{}, errors.Wrap(err, "bad advertising data")
	}
	return FromPacket(e.Addr, e.RSSI, e.Connectable, Packet(b)), nil
}

// ReadEntries reads a recorded scan. Blank lines and lines starting with '#' are skipped.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var es []Entry
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
		if _, err := e.Offset(); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
		es = append(es, e)
	}
	return es, errors.Wrap(s.Err(), "can't read recording")
}

// Recorder writes reports in the format read by ReadEntries.
type Recorder struct {
	mu    sync.Mutex
	enc   *json.Encoder
	start time.Time
	now   func() time.Time
}

// NewRecorder returns a recorder whose offsets start now.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w), start: time.Now(), now: time.Now}
}

// Record appends r to the recording.
func (rec *Recorder) Record(r Report) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	at := r.Time
	if at.IsZero() {
		at = rec.now()
	}
	off := at.Sub(rec.start)
	if off < 0 {
		off = 0
	}
	e := Entry{
		At:          off.Round(time.Millisecond).String(),
		Addr:        r.Addr,
		RSSI:        r.RSSI,
		Connectable: r.Connectable,
		Data:        hex.EncodeToString(r.Packet()),
	}
	return errors.Wrap(rec.enc.Encode(e), "can't record report")
}
