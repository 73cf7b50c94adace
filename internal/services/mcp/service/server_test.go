package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coredice "github.com/louisbranch/dicetower/internal/core/dice"
	diceservice "github.com/louisbranch/dicetower/internal/services/dice/api/grpc/dice"
	"github.com/louisbranch/dicetower/internal/services/dice/metrics"
	dicesvc "github.com/louisbranch/dicetower/internal/services/dice/service"
	"github.com/louisbranch/dicetower/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type fixedSource int

func (f fixedSource) Draw(low, high int) (int, error) {
	return min(max(int(f), low), high), nil
}

// startDiceClient serves the dice API over an in-memory listener.
func startDiceClient(t *testing.T) *diceservice.Client {
	t.Helper()
	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	roller := coredice.NewRoller(fixedSource(3))
	diceservice.RegisterDiceServiceServer(server, diceservice.NewServer(dicesvc.New(roller, metrics.New())))
	go func() {
		_ = server.Serve(listener)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})
	return diceservice.NewClient(conn)
}

// connectSession runs the MCP server on in-memory transports and returns a
// connected client session.
func connectSession(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("serve did not stop after cancel")
		}
		_ = session.Close()
	})
	return session
}

func decodeStructured[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var out T
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func toolText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestToolsAreListed(t *testing.T) {
	session := connectSession(t, newServer(startDiceClient(t)))

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	if !names["roll_dice"] || !names["parse_dice_notation"] {
		t.Fatalf("tools = %v", names)
	}
}

func TestRollDiceTool(t *testing.T) {
	session := connectSession(t, newServer(startDiceClient(t)))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "roll_dice",
		Arguments: map[string]any{"expression": "2d6+1"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(result))
	}
	out := decodeStructured[domain.RollDiceResult](t, result)
	if out.Total != 7 || out.Summary != "2d6+1 → [3 3] +1 = 7" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestRollDiceToolReportsCallerErrors(t *testing.T) {
	session := connectSession(t, newServer(startDiceClient(t)))

	tests := []struct {
		name     string
		args     map[string]any
		wantText string
	}{
		{name: "invalid", args: map[string]any{"expression": "2d0"}, wantText: "Dice sides must be at least 1"},
		{name: "limit", args: map[string]any{"expression": "5000d6"}, wantText: "exceeds the limit of 1000"},
		{name: "localized", args: map[string]any{"expression": "1d20+1d6", "mode": "advantage", "locale": "pt-BR"}, wantText: "grupo de dados"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "roll_dice", Arguments: tt.args})
			if err != nil {
				t.Fatalf("call tool: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if got := toolText(result); !strings.Contains(got, tt.wantText) {
				t.Fatalf("tool text = %q, want it to contain %q", got, tt.wantText)
			}
		})
	}
}

func TestParseDiceNotationTool(t *testing.T) {
	session := connectSession(t, newServer(startDiceClient(t)))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "parse_dice_notation",
		Arguments: map[string]any{"expression": "abc"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(result))
	}
	out := decodeStructured[domain.ParseDiceNotationResult](t, result)
	if out.Valid || len(out.Errors) != 1 || out.Errors[0].Message != coredice.MsgInvalidFormat {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestHTTPHandlerServesUp(t *testing.T) {
	server := newServer(startDiceClient(t))
	recorder := httptest.NewRecorder()
	server.httpHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/up", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestHTTPTransportRoundTrip(t *testing.T) {
	server := newServer(startDiceClient(t))
	httpServer := httptest.NewServer(server.httpHandler())
	defer httpServer.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL + "/mcp"}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "roll_dice",
		Arguments: map[string]any{"expression": "1d4"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(result))
	}
	if out := decodeStructured[domain.RollDiceResult](t, result); out.Total != 3 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), Config{DiceAddr: "localhost:0", Transport: "websocket"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("error = %v, want unsupported transport", err)
	}
}

func TestRunRequiresDiceAddress(t *testing.T) {
	if err := Run(context.Background(), Config{Transport: TransportStdio}); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestServeWithoutServer(t *testing.T) {
	var server *Server
	if err := server.serveWithTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}
