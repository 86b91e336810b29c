// Package preflight brings the Bluetooth adapter into a usable state and
// checks the process may drive it, before any scan is started.
//
// The flow runs once. Nothing in it is fatal: when the adapter stays blocked
// or the permission is missing, the user is told so and the caller carries on
// with limited functionality.
package preflight

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/config"
)

// Notice is a titled message shown to the user.
type Notice struct {
	Title   string
	Message string
}

// Notices shown by Run.
var (
	NoticeEnable = Notice{
		Title:   "Bluetooth is off",
		Message: "Bluetooth is blocked. Turn it on so this app can scan for devices?",
	}
	NoticeNoAdapter = Notice{
		Title:   "No Bluetooth adapter",
		Message: "No Bluetooth adapter was found. Scanning will not work.",
	}
	NoticeHardBlocked = Notice{
		Title:   "Bluetooth unavailable",
		Message: "Bluetooth is disabled by a hardware switch and can't be turned on from here.",
	}
	NoticeNeedAccess = Notice{
		Title:   "This app needs Bluetooth access",
		Message: "Please grant raw Bluetooth socket access (run as root, or setcap cap_net_raw,cap_net_admin+eip on the binary) so this app can detect peripherals.",
	}
	NoticeLimited = Notice{
		Title:   "Functionality limited",
		Message: "Since Bluetooth access has not been granted, this app will not be able to discover peripherals.",
	}
)

// Prompter shows notices and asks yes/no questions.
type Prompter interface {
	Notify(n Notice)
	Confirm(n Notice) bool
}

// Adapter is the state of the local Bluetooth adapter.
type Adapter struct {
	Name        string
	Present     bool
	SoftBlocked bool
	HardBlocked bool

	rfkill string
}

// Enabled reports whether the adapter exists and no kill switch blocks it.
func (a Adapter) Enabled() bool {
	return a.Present && !a.SoftBlocked && !a.HardBlocked
}

// Permission is an access right a backend needs.
type Permission struct {
	Name     string
	Required bool
	Granted  bool
}

// Report is the outcome of the checks.
type Report struct {
	Backend    string
	Adapter    Adapter
	Permission Permission
}

// Ready reports whether a scan is expected to work.
func (r Report) Ready() bool {
	if r.Backend == config.BackendReplay {
		return true
	}
	return r.Adapter.Enabled() && (!r.Permission.Required || r.Permission.Granted)
}

// Capabilities needed to open a raw HCI socket.
const (
	capNetAdmin = 12
	capNetRaw   = 13
)

// Checker inspects and changes system state. The zero value is not usable;
// use NewChecker.
type Checker struct {
	SysfsRoot string
	Caps      func() (uint64, error)
	Euid      func() int
	Log       logrus.FieldLogger
}

// NewChecker returns a checker for the running system.
func NewChecker(log logrus.FieldLogger) *Checker {
	return &Checker{
		SysfsRoot: "/sys",
		Caps:      effectiveCaps,
		Euid:      os.Geteuid,
		Log:       log.WithField("component", "preflight"),
	}
}

// Inspect reports the adapter and permission state for backend on hci<id>.
func (c *Checker) Inspect(backend string, id int) (Report, error) {
	r := Report{Backend: backend}
	if backend == config.BackendReplay {
		return r, nil
	}
	a, err := c.adapter(id)
	if err != nil {
		return r, errors.Wrap(err, "can't inspect adapter")
	}
	r.Adapter = a
	r.Permission = c.permission(backend)
	return r, nil
}

func (c *Checker) permission(backend string) Permission {
	if backend != config.BackendHCI {
		// BlueZ mediates access over D-Bus.
		return Permission{Name: "bluez", Granted: true}
	}
	p := Permission{Name: "CAP_NET_RAW+CAP_NET_ADMIN", Required: true}
	if c.Euid() == 0 {
		p.Granted = true
		return p
	}
	caps, err := c.Caps()
	if err != nil {
		c.Log.WithError(err).Debug("can't read capabilities")
		return p
	}
	want := uint64(1)<<capNetAdmin | uint64(1)<<capNetRaw
	p.Granted = caps&want == want
	return p
}

// Run inspects the system and walks the user through enabling the adapter
// and granting access. It returns the state after the flow.
func (c *Checker) Run(backend string, id int, p Prompter) (Report, error) {
	r, err := c.Inspect(backend, id)
	if err != nil || backend == config.BackendReplay {
		return r, err
	}

	if r, err = c.enableAdapter(r, id, p); err != nil {
		return r, err
	}

	if r.Permission.Required && !r.Permission.Granted {
		p.Notify(NoticeNeedAccess)
		// Capabilities can't be granted at runtime; look again in case
		// the user fixed it while the notice was up.
		if r, err = c.Inspect(backend, id); err != nil {
			return r, err
		}
		if !r.Permission.Granted {
			c.Log.WithField("permission", r.Permission.Name).Warn("permission not granted")
			p.Notify(NoticeLimited)
			return r, nil
		}
	}
	c.Log.WithField("permission", r.Permission.Name).Debug("permission granted")
	return r, nil
}

func (c *Checker) enableAdapter(r Report, id int, p Prompter) (Report, error) {
	a := r.Adapter
	switch {
	case !a.Present:
		p.Notify(NoticeNoAdapter)
		return r, nil
	case a.HardBlocked:
		p.Notify(NoticeHardBlocked)
		return r, nil
	case !a.SoftBlocked:
		return r, nil
	}
	if !p.Confirm(NoticeEnable) {
		c.Log.WithField("adapter", a.Name).Info("user left adapter disabled")
		return r, nil
	}
	if err := c.Enable(a); err != nil {
		c.Log.WithError(err).WithField("adapter", a.Name).Error("can't enable adapter")
		return r, nil
	}
	c.Log.WithField("adapter", a.Name).Info("adapter enabled")
	return c.Inspect(r.Backend, id)
}
