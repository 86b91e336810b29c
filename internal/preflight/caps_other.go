//go:build !linux

package preflight

import "github.com/pkg/errors"

func effectiveCaps() (uint64, error) {
	return 0, errors.New("capabilities are only available on linux")
}
