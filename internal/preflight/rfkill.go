package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// adapter reads hci<id> and its kill switch from sysfs. An adapter without
// its own rfkill entry falls back to the bluetooth switch named after it,
// and hci0 to the first unnamed bluetooth switch.
func (c *Checker) adapter(id int) (Adapter, error) {
	a := Adapter{Name: fmt.Sprintf("hci%d", id)}
	dir := filepath.Join(c.SysfsRoot, "class", "bluetooth", a.Name)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return a, nil
		}
		return a, err
	}
	a.Present = true

	rf, err := c.rfkillOf(dir, a.Name, id == 0)
	if err != nil {
		return a, err
	}
	if rf == "" {
		return a, nil
	}
	a.rfkill = rf
	if a.SoftBlocked, err = readFlag(filepath.Join(rf, "soft")); err != nil {
		return a, err
	}
	if a.HardBlocked, err = readFlag(filepath.Join(rf, "hard")); err != nil {
		return a, err
	}
	return a, nil
}

func (c *Checker) rfkillOf(dev, name string, anyUnnamed bool) (string, error) {
	own, err := filepath.Glob(filepath.Join(dev, "rfkill*"))
	if err != nil {
		return "", err
	}
	if len(own) > 0 {
		sort.Strings(own)
		return own[0], nil
	}

	all, err := filepath.Glob(filepath.Join(c.SysfsRoot, "class", "rfkill", "rfkill*"))
	if err != nil {
		return "", err
	}
	sort.Strings(all)
	unnamed := ""
	for _, rf := range all {
		if readString(filepath.Join(rf, "type")) != "bluetooth" {
			continue
		}
		switch readString(filepath.Join(rf, "name")) {
		case name:
			return rf, nil
		case "":
			if unnamed == "" {
				unnamed = rf
			}
		}
	}
	if anyUnnamed {
		return unnamed, nil
	}
	return "", nil
}

func readString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readFlag(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "can't read %s", path)
	}
	return strings.TrimSpace(string(b)) == "1", nil
}

// Enable lifts the soft block of a. Hard blocks can't be lifted in software.
func (c *Checker) Enable(a Adapter) error {
	switch {
	case !a.Present:
		return errors.Errorf("adapter %s not present", a.Name)
	case a.HardBlocked:
		return errors.Errorf("adapter %s is hard blocked", a.Name)
	case a.rfkill == "":
		return nil
	}
	err := os.WriteFile(filepath.Join(a.rfkill, "soft"), []byte("0\n"), 0644)
	return errors.Wrapf(err, "can't unblock %s", a.Name)
}
