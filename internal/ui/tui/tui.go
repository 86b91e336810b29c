// Package tui is the terminal scanner screen: one start/stop control and a
// scrolling view of the reports.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blescan/blescan/internal/scan"
)

// Controller starts and stops scanning; *scan.Session implements it.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Scanning() bool
	Seen() int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	startStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("10"))
	stopStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// chrome is the number of lines around the viewport: title, button (3), status, help.
const chrome = 6

type changedMsg struct{}

// Model is the bubbletea model of the screen.
type Model struct {
	ctx context.Context
	ctl Controller
	buf *scan.Buffer
	vp  viewport.Model
	err error
}

// New returns the screen for ctl, rendering buf.
func New(ctx context.Context, ctl Controller, buf *scan.Buffer) Model {
	vp := viewport.New(80, 20)
	vp.SetContent(buf.String())
	return Model{ctx: ctx, ctl: ctl, buf: buf, vp: vp}
}

// Run shows the screen until the user quits.
func Run(ctx context.Context, ctl Controller, buf *scan.Buffer) error {
	_, err := tea.NewProgram(New(ctx, ctl, buf), tea.WithAltScreen()).Run()
	return err
}

// Init ...
func (m Model) Init() tea.Cmd {
	return m.waitChange()
}

func (m Model) waitChange() tea.Cmd {
	return func() tea.Msg {
		<-m.buf.Changed()
		return changedMsg{}
	}
}

// Update ...
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - chrome
		if m.vp.Height < 1 {
			m.vp.Height = 1
		}
		return m, nil

	case changedMsg:
		m.vp.SetContent(m.buf.String())
		m.vp.GotoBottom()
		return m, m.waitChange()

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			if !m.ctl.Scanning() {
				m.err = m.ctl.Start(m.ctx)
			}
			return m, nil
		case "x":
			if m.ctl.Scanning() {
				m.err = m.ctl.Stop()
			}
			return m, nil
		case "q", "ctrl+c":
			if m.ctl.Scanning() {
				m.ctl.Stop()
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View ...
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("BLE Scanner"))
	b.WriteString("\n")

	// Only the applicable control is shown.
	if m.ctl.Scanning() {
		b.WriteString(stopStyle.Render("[x] Stop Scan"))
	} else {
		b.WriteString(startStyle.Render("[s] Start Scan"))
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render(m.err.Error()))
	case m.ctl.Scanning():
		b.WriteString(statusStyle.Render(fmt.Sprintf("scanning, %d devices", m.ctl.Seen())))
	default:
		b.WriteString(statusStyle.Render(fmt.Sprintf("idle, %d devices", m.ctl.Seen())))
	}
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("s start • x stop • ↑/↓ scroll • q quit"))
	return b.String()
}
