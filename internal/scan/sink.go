package scan

import (
	"io"
	"strings"
	"sync"
)

// Sink receives the text of the result view.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Reset replaces the whole view with s.
	Reset(s string)
	// Append adds s to the end of the view.
	Append(s string)
}

// WriterSink streams the view to w. A stream can't be cleared, so Reset
// only writes s.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink ...
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Reset ...
func (ws *WriterSink) Reset(s string) { ws.Append(s) }

// Append ...
func (ws *WriterSink) Append(s string) {
	ws.mu.Lock()
	io.WriteString(ws.w, s)
	ws.mu.Unlock()
}

// Buffer keeps the view in memory for screens that redraw it. It holds at
// most max bytes, dropping whole lines from the top.
type Buffer struct {
	mu      sync.Mutex
	text    string
	max     int
	changed chan struct{}
}

// DefaultScrollback is the Buffer size used by the screens.
const DefaultScrollback = 64 << 10

// NewBuffer returns a buffer holding up to max bytes; max <= 0 means unbounded.
func NewBuffer(max int) *Buffer {
	return &Buffer{max: max, changed: make(chan struct{}, 1)}
}

// Reset ...
func (b *Buffer) Reset(s string) {
	b.mu.Lock()
	b.text = b.trim(s)
	b.mu.Unlock()
	b.signal()
}

// Append ...
func (b *Buffer) Append(s string) {
	b.mu.Lock()
	b.text = b.trim(b.text + s)
	b.mu.Unlock()
	b.signal()
}

// Write appends p, so the buffer can collect log output.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(string(p))
	return len(p), nil
}

// String returns the current view.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Changed receives a value after the view changed. Changes made before the
// previous value was received are coalesced; senders never block.
func (b *Buffer) Changed() <-chan struct{} {
	return b.changed
}

func (b *Buffer) signal() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *Buffer) trim(s string) string {
	if b.max <= 0 || len(s) <= b.max {
		return s
	}
	s = s[len(s)-b.max:]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
