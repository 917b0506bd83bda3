// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package escrow

import (
	"github.com/btcsuite/btclog/v2"
)

// log is a logger that is initialized with no output filters. This means the
// package will not perform any logging by default until the caller requests it.
var log = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all package logging output.
func DisableLog() {
	log = btclog.Disabled
}
