// Package main rolls a dice expression from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/dicetower/internal/platform/config"

	rollcmd "github.com/louisbranch/dicetower/internal/cmd/roll"
)

func main() {
	cfg, err := rollcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitOnError(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ExitOnError(rollcmd.Run(ctx, cfg, os.Stdout, os.Stderr))
}
