// Package scenario parses scenario command flags and runs a Lua script
// against the dice service.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/dicetower/internal/platform/cmd"
	"github.com/louisbranch/dicetower/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	DiceAddr   string        `env:"DICETOWER_DICE_ADDR"               envDefault:"localhost:8090"`
	Script     string        `env:"DICETOWER_SCENARIO_FILE"`
	Assertions bool          `env:"DICETOWER_SCENARIO_ASSERT"         envDefault:"true"`
	Verbose    bool          `env:"DICETOWER_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"DICETOWER_SCENARIO_TIMEOUT"        envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DiceAddr, "addr", cfg.DiceAddr, "dice server address")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per dice call")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Script == "" && fs.NArg() > 0 {
		cfg.Script = fs.Arg(0)
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Script == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	logger := log.New(errOut, entrypoint.LogPrefix(entrypoint.ServiceScenario), 0)

	err := scenario.RunFile(ctx, scenario.Config{
		DiceAddr:   cfg.DiceAddr,
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
	}, cfg.Script)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scenario %s: ok\n", cfg.Script)
	return nil
}
