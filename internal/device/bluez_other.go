//go:build !linux

package device

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/config"
)

func newBlueZ(cfg *config.Config, log logrus.FieldLogger) (Scanner, error) {
	return nil, errors.Wrap(ErrUnsupported, "bluez")
}
