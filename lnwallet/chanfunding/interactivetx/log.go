package interactivetx

import "github.com/btcsuite/btclog"

// log is the package-level logger used throughout interactivetx. It is
// disabled by default; callers that want output should call UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}
