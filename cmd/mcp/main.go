package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/dicetower/internal/cmd/mcp"
	entrypoint "github.com/louisbranch/dicetower/internal/platform/cmd"
)

// main starts the MCP server on stdio or HTTP.
func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceMCP))
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("serve MCP: %v", err)
	}
}
