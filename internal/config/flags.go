package config

import (
	"time"

	"github.com/urfave/cli"
)

const (
	flgDevice   = "device"
	flgDeviceID = "device-id"
	flgLogLevel = "log-level"
	flgReplay   = "replay"
	flgLoop     = "loop"
	flgMode     = "mode"
	flgActive   = "active"
	flgDup      = "dup"
	flgDuration = "duration"
	flgName     = "name"
	flgAddr     = "addr"
	flgRSSI     = "rssi"
	flgRecord   = "record"
)

// GlobalFlags select and configure the backend.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: flgDevice, Value: BackendHCI, Usage: "scanner backend (hci / bluez / replay)", EnvVar: "BLESCAN_DEVICE"},
		cli.IntFlag{Name: flgDeviceID, Usage: "HCI device id (hci<N>); bluez supports hci0 only", EnvVar: "BLESCAN_DEVICE_ID"},
		cli.StringFlag{Name: flgLogLevel, Value: "info", Usage: "log level (debug / info / warn / error)", EnvVar: "BLESCAN_LOG_LEVEL"},
		cli.StringFlag{Name: flgReplay, Usage: "recorded scan played back by the replay backend", EnvVar: "BLESCAN_REPLAY"},
		cli.BoolFlag{Name: flgLoop, Usage: "restart the recording when it ends", EnvVar: "BLESCAN_LOOP"},
	}
}

// ScanFlags configure how a scan runs and which results are shown.
func ScanFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: flgMode + ", m", Value: LowPower.String(), Usage: "scan mode (low-power / balanced / low-latency)", EnvVar: "BLESCAN_MODE"},
		cli.BoolFlag{Name: flgActive, Usage: "active scanning (request scan responses)", EnvVar: "BLESCAN_ACTIVE"},
		cli.BoolTFlag{Name: flgDup, Usage: "report every advertisement, not only the first per device", EnvVar: "BLESCAN_DUP"},
		cli.StringFlag{Name: flgName + ", n", Usage: "only show devices with this name"},
		cli.StringFlag{Name: flgAddr + ", a", Usage: "only show the device with this address"},
		cli.IntFlag{Name: flgRSSI, Usage: "only show devices at or above this RSSI (dBm)", EnvVar: "BLESCAN_RSSI"},
	}
}

// TimedScanFlags extend ScanFlags for commands that end on their own.
func TimedScanFlags() []cli.Flag {
	return append(ScanFlags(),
		cli.DurationFlag{Name: flgDuration + ", d", Value: 5 * time.Second, Usage: "scan duration, 0 scans until interrupted"},
		cli.StringFlag{Name: flgRecord + ", r", Usage: "append every report to this file for later replay"},
	)
}
