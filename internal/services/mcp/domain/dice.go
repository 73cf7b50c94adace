package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/dicetower/internal/platform/id"
	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"github.com/louisbranch/dicetower/internal/platform/timeouts"
	diceservice "github.com/louisbranch/dicetower/internal/services/dice/api/grpc/dice"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// DiceClient is the subset of the dice gRPC client the tools call.
type DiceClient interface {
	RollDice(ctx context.Context, req wire.RollRequest, opts ...grpc.CallOption) (wire.RollRecord, error)
	ParseNotation(ctx context.Context, req wire.ParseRequest, opts ...grpc.CallOption) (wire.ParseResult, error)
}

// RollDiceInput represents the MCP tool input for rolling dice.
type RollDiceInput struct {
	Expression string `json:"expression" jsonschema:"dice expression such as 2d6+1d4+3"`
	Mode       string `json:"mode,omitempty" jsonschema:"none, advantage or disadvantage; advantage modes need a single dice group"`
	Locale     string `json:"locale,omitempty" jsonschema:"optional language tag for error messages, e.g. pt-BR"`
}

// DiceGroupResult is one rolled dice group.
type DiceGroupResult struct {
	Notation string `json:"notation" jsonschema:"canonical NdM notation"`
	Rolls    []int  `json:"rolls" jsonschema:"individual die values in roll order"`
	Subtotal int64  `json:"subtotal" jsonschema:"sum of the rolls"`
}

// AlternateRollResult is the evaluation discarded by advantage or disadvantage.
type AlternateRollResult struct {
	Results   []DiceGroupResult `json:"results" jsonschema:"dice groups of the discarded roll"`
	Modifiers []int64           `json:"modifiers" jsonschema:"modifiers applied to the discarded roll"`
	Total     int64             `json:"total" jsonschema:"total of the discarded roll"`
}

// RollDiceResult represents the MCP tool output for rolling dice.
type RollDiceResult struct {
	ID         string               `json:"id" jsonschema:"roll identifier"`
	Expression string               `json:"expression" jsonschema:"expression as submitted"`
	Results    []DiceGroupResult    `json:"results" jsonschema:"rolled dice groups"`
	Modifiers  []int64              `json:"modifiers" jsonschema:"flat modifiers in order"`
	Total      int64                `json:"total" jsonschema:"sum of subtotals and modifiers"`
	Mode       string               `json:"mode" jsonschema:"roll mode applied"`
	Alternate  *AlternateRollResult `json:"alternate,omitempty" jsonschema:"discarded roll for advantage or disadvantage"`
	Timestamp  string               `json:"timestamp" jsonschema:"RFC 3339 time the roll was made"`
	Summary    string               `json:"summary" jsonschema:"human readable audit line"`
}

// ParseDiceNotationInput represents the MCP tool input for validating notation.
type ParseDiceNotationInput struct {
	Expression string `json:"expression" jsonschema:"dice expression to validate without rolling"`
	Locale     string `json:"locale,omitempty" jsonschema:"optional language tag for error messages"`
}

// NotationGroup is one accepted dice group.
type NotationGroup struct {
	Count    int    `json:"count" jsonschema:"number of dice"`
	Sides    int    `json:"sides" jsonschema:"faces per die"`
	Notation string `json:"notation" jsonschema:"canonical NdM notation"`
}

// NotationError is one validation problem.
type NotationError struct {
	Field   string `json:"field" jsonschema:"offending field"`
	Message string `json:"message" jsonschema:"validation message"`
}

// ParseDiceNotationResult represents the MCP tool output for validating notation.
type ParseDiceNotationResult struct {
	Original   string          `json:"original" jsonschema:"expression as submitted"`
	Valid      bool            `json:"valid" jsonschema:"whether the expression can be rolled"`
	DiceGroups []NotationGroup `json:"dice_groups" jsonschema:"accepted dice groups"`
	Modifiers  []int64         `json:"modifiers" jsonschema:"flat modifiers in order"`
	Errors     []NotationError `json:"errors" jsonschema:"validation problems, empty when valid"`
}

// RollDiceTool defines the MCP tool schema for rolling dice.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls a dice expression like 2d6+1d4+3 with a cryptographic source, optionally with advantage or disadvantage",
	}
}

// ParseDiceNotationTool defines the MCP tool schema for validating notation.
func ParseDiceNotationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "parse_dice_notation",
		Description: "Validates a dice expression and reports its dice groups and modifiers without rolling",
	}
}

// RollDiceHandler executes a roll through the dice service.
func RollDiceHandler(client DiceClient) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		callCtx, cancel, err := newCallContext(ctx, input.Locale)
		if err != nil {
			return nil, RollDiceResult{}, err
		}
		defer cancel()

		record, err := client.RollDice(callCtx, wire.RollRequest{Expression: input.Expression, Mode: input.Mode})
		if err != nil {
			return nil, RollDiceResult{}, toolError(callCtx, "dice roll failed", err)
		}
		return nil, rollDiceResult(record), nil
	}
}

// ParseDiceNotationHandler validates an expression through the dice service.
func ParseDiceNotationHandler(client DiceClient) mcp.ToolHandlerFor[ParseDiceNotationInput, ParseDiceNotationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParseDiceNotationInput) (*mcp.CallToolResult, ParseDiceNotationResult, error) {
		callCtx, cancel, err := newCallContext(ctx, input.Locale)
		if err != nil {
			return nil, ParseDiceNotationResult{}, err
		}
		defer cancel()

		parsed, err := client.ParseNotation(callCtx, wire.ParseRequest{Expression: input.Expression})
		if err != nil {
			return nil, ParseDiceNotationResult{}, toolError(callCtx, "notation parse failed", err)
		}
		return nil, parseDiceNotationResult(parsed), nil
	}
}

// newCallContext bounds a dice call and tags it with a fresh request id and
// the caller locale.
func newCallContext(ctx context.Context, locale string) (context.Context, context.CancelFunc, error) {
	requestID, err := id.NewID()
	if err != nil {
		return nil, nil, fmt.Errorf("generate request id: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
	callCtx = platformgrpc.WithRequestID(callCtx, requestID)
	if locale = strings.TrimSpace(locale); locale != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, diceservice.LocaleHeader, locale)
	}
	return callCtx, cancel, nil
}

// toolError turns a dice status error into a tool error. Caller mistakes
// carry only the localized message so the model can correct the input.
func toolError(ctx context.Context, action string, err error) error {
	if diceservice.IsCallerError(err) {
		return fmt.Errorf("%s", diceservice.UserMessage(err))
	}
	log.Printf("mcp %s (request %s): %v", action, platformgrpc.RequestIDFromContext(ctx), err)
	return fmt.Errorf("%s: %s", action, diceservice.UserMessage(err))
}

func rollDiceResult(record wire.RollRecord) RollDiceResult {
	result := RollDiceResult{
		ID:         record.ID,
		Expression: record.Expression,
		Results:    diceGroupResults(record.Results),
		Modifiers:  nonNil(record.Modifiers),
		Total:      record.Total,
		Mode:       record.Mode,
		Timestamp:  record.Timestamp.UTC().Format(time.RFC3339Nano),
		Summary:    wire.AuditLine(record),
	}
	if alt := record.Alternate; alt != nil {
		result.Alternate = &AlternateRollResult{
			Results:   diceGroupResults(alt.Results),
			Modifiers: nonNil(alt.Modifiers),
			Total:     alt.Total,
		}
	}
	return result
}

func diceGroupResults(results []wire.RollResult) []DiceGroupResult {
	out := make([]DiceGroupResult, 0, len(results))
	for _, result := range results {
		out = append(out, DiceGroupResult{
			Notation: result.Notation,
			Rolls:    nonNil(result.Rolls),
			Subtotal: result.Subtotal,
		})
	}
	return out
}

func parseDiceNotationResult(parsed wire.ParseResult) ParseDiceNotationResult {
	result := ParseDiceNotationResult{
		Original:   parsed.Original,
		Valid:      parsed.Valid,
		DiceGroups: make([]NotationGroup, 0, len(parsed.DiceGroups)),
		Modifiers:  nonNil(parsed.Modifiers),
		Errors:     make([]NotationError, 0, len(parsed.Errors)),
	}
	for _, group := range parsed.DiceGroups {
		result.DiceGroups = append(result.DiceGroups, NotationGroup(group))
	}
	for _, fieldErr := range parsed.Errors {
		result.Errors = append(result.Errors, NotationError(fieldErr))
	}
	return result
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
