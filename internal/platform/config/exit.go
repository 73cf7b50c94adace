package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Exitf writes a formatted message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
	exit(1)
}

// ExitOnError exits for a non-nil err. A help request exits quietly with
// code 0 because the flag package already printed usage.
func ExitOnError(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, flag.ErrHelp):
		exit(0)
	default:
		Exitf("Error: %v", err)
	}
}
