// Package must holds fatal assertions on data embedded in the binary, never
// used on user input or network data, and a linear wait helper.
package must

import (
	"log/slog"
	"os"
)

// Assert exits when cond is false, logging msg with the key value pairs of args.
func Assert(cond bool, msg string, args ...any) {
	if !cond {
		slog.Error("assertion failed: "+msg, args...)
		os.Exit(1)
	}
}

// NoError exits when err is set, logging msg and the error.
func NoError(err error, msg string) {
	Assert(err == nil, msg, "err", err)
}
