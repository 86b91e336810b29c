package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/blescan/blescan/internal/preflight"
)

// termPrompter asks on the terminal.
type termPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTermPrompter(in io.Reader, out io.Writer) *termPrompter {
	return &termPrompter{in: bufio.NewReader(in), out: out}
}

func (p *termPrompter) Notify(n preflight.Notice) {
	fmt.Fprintf(p.out, "%s\n  %s\n", n.Title, n.Message)
}

func (p *termPrompter) Confirm(n preflight.Notice) bool {
	fmt.Fprintf(p.out, "%s\n  %s [y/N] ", n.Title, n.Message)
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
