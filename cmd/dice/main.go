package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dicecmd "github.com/louisbranch/dicetower/internal/cmd/dice"
	entrypoint "github.com/louisbranch/dicetower/internal/platform/cmd"
)

// main starts the dice gRPC and HTTP servers.
func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceDice))
	cfg, err := dicecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dicecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("serve dice: %v", err)
	}
}
