package scan

import (
	"fmt"

	"github.com/blescan/blescan/internal/adv"
)

// Format renders a report as a block of the result view.
func Format(r adv.Report) string {
	name := r.Name
	if name == "" {
		name = "null"
	}
	return fmt.Sprintf("--- %s --- \ndevice address: %s\ndevice type: %d\nrssi: %d\n\n",
		name, r.Addr, int(r.Type), r.RSSI)
}
