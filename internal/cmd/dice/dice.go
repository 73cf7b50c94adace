// Package dice parses dice server flags and runs the gRPC and HTTP listeners.
package dice

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/dicetower/internal/platform/cmd"
	server "github.com/louisbranch/dicetower/internal/services/dice/app"
)

// Config holds dice server configuration.
type Config struct {
	GRPCAddr string `env:"DICETOWER_DICE_GRPC_ADDR" envDefault:":8090"`
	HTTPAddr string `env:"DICETOWER_DICE_HTTP_ADDR" envDefault:":8091"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address (empty disables the HTTP API)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dice server with telemetry.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDice, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			GRPCAddr: cfg.GRPCAddr,
			HTTPAddr: cfg.HTTPAddr,
		})
	})
}
