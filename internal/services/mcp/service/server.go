package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"github.com/louisbranch/dicetower/internal/platform/timeouts"
	diceservice "github.com/louisbranch/dicetower/internal/services/dice/api/grpc/dice"
	"github.com/louisbranch/dicetower/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

const (
	serverName    = "dicetower MCP"
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	DiceAddr  string
	Transport TransportKind
	// HTTPAddr defaults to localhost:8092 for the HTTP transport.
	HTTPAddr string
}

// Server hosts the MCP tools backed by the dice service.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New dials the dice service and registers the dice tools.
func New(ctx context.Context, diceAddr string) (*Server, error) {
	conn, err := dialDice(ctx, diceAddr)
	if err != nil {
		return nil, err
	}
	server := newServer(diceservice.NewClient(conn))
	server.conn = conn
	return server, nil
}

func newServer(client domain.DiceClient) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.RollDiceTool(), domain.RollDiceHandler(client))
	mcp.AddTool(mcpServer, domain.ParseDiceNotationTool(), domain.ParseDiceNotationHandler(client))
	return &Server{mcpServer: mcpServer}
}

// Run serves MCP on the configured transport until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := New(ctx, cfg.DiceAddr)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportHTTP {
		return server.serveHTTP(ctx, cfg.HTTPAddr)
	}
	return server.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs the MCP session loop and closes the dice
// connection on exit.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close dice connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close dice connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Close releases the dice connection.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

func dialDice(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	addr = strings.TrimSpace(addr)
	logf := func(format string, args ...any) {
		log.Printf("dice %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.Dial(ctx, addr, platformgrpc.DialConfig{
		Timeout:       timeouts.GRPCDial,
		HealthService: diceservice.ServiceName,
		Logf:          logf,
	})
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageConnect {
			return nil, fmt.Errorf("connect to dice server at %s: %w", addr, dialErr.Err)
		}
		return nil, err
	}
	return conn, nil
}
