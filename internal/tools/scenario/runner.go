package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shopify/go-lua"
	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"github.com/louisbranch/dicetower/internal/platform/timeouts"
	diceservice "github.com/louisbranch/dicetower/internal/services/dice/api/grpc/dice"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"google.golang.org/grpc"
)

// Config controls scenario execution.
type Config struct {
	DiceAddr   string
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		DiceAddr:   "localhost:8090",
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
	}
}

// DiceClient is the dice API a scenario drives.
type DiceClient interface {
	RollDice(ctx context.Context, req wire.RollRequest, opts ...grpc.CallOption) (wire.RollRecord, error)
	ParseNotation(ctx context.Context, req wire.ParseRequest, opts ...grpc.CallOption) (wire.ParseResult, error)
}

// Runner executes Lua scenarios against the dice gRPC API.
type Runner struct {
	conn       *grpc.ClientConn
	client     DiceClient
	assertions *Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	rolls      int
}

// NewRunner connects to the dice service and prepares a runner.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if strings.TrimSpace(cfg.DiceAddr) == "" {
		return nil, errors.New("dice address is required")
	}
	conn, err := platformgrpc.Dial(ctx, cfg.DiceAddr, platformgrpc.DialConfig{
		Timeout:       timeouts.GRPCDial,
		HealthService: diceservice.ServiceName,
	})
	if err != nil {
		return nil, err
	}
	r := newRunnerWithClient(cfg, diceservice.NewClient(conn))
	r.conn = conn
	return r, nil
}

// newRunnerWithClient applies config defaults around a prebuilt client.
func newRunnerWithClient(cfg Config, client DiceClient) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Runner{
		client:     client,
		assertions: &Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// RunFile dials the dice service and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.RunFile(ctx, path)
}

// RunFile executes the Lua script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.run(ctx, name, func(state *lua.State) error {
		return lua.LoadFile(state, path, "")
	})
}

// RunScript executes Lua source under the given chunk name.
func (r *Runner) RunScript(ctx context.Context, name, source string) error {
	return r.run(ctx, name, func(state *lua.State) error {
		return lua.LoadBuffer(state, source, name, "")
	})
}

// Failures returns the assertion failures recorded so far.
func (r *Runner) Failures() []string {
	return r.assertions.Failures()
}

func (r *Runner) run(ctx context.Context, name string, load func(*lua.State) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	r.logf("scenario start: %s", name)

	state := lua.NewState()
	lua.OpenLibraries(state)
	r.registerDice(ctx, state)

	if err := load(state); err != nil {
		return fmt.Errorf("load lua %s: %w", name, err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua %s: %w", name, err)
	}
	if err := r.assertions.Err(); err != nil {
		return fmt.Errorf("scenario %s: %w", name, err)
	}
	r.logf("scenario done: %s (%d rolls, %s)", name, r.rolls, time.Since(start).Round(time.Millisecond))
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
