package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal error on stderr and terminates the process with
// exit code 1. One-shot tools use it where a service would return the
// error to its run loop.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
