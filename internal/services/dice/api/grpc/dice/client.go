package dice

import (
	"context"
	"fmt"

	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls dice.v1.DiceService.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an open connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// RollDice rolls expression in mode. Failures are gRPC status errors.
func (c *Client) RollDice(ctx context.Context, req wire.RollRequest, opts ...grpc.CallOption) (wire.RollRecord, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RollDiceMethod, encodeRollRequest(req), out, opts...); err != nil {
		return wire.RollRecord{}, err
	}
	record, err := decodeRecord(out)
	if err != nil {
		return wire.RollRecord{}, fmt.Errorf("decode roll record: %w", err)
	}
	return record, nil
}

// ParseNotation validates expression without rolling it.
func (c *Client) ParseNotation(ctx context.Context, req wire.ParseRequest, opts ...grpc.CallOption) (wire.ParseResult, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, ParseNotationMethod, encodeParseRequest(req), out, opts...); err != nil {
		return wire.ParseResult{}, err
	}
	result, err := decodeParseResult(out)
	if err != nil {
		return wire.ParseResult{}, fmt.Errorf("decode parse result: %w", err)
	}
	return result, nil
}

// UserMessage returns the localized message attached to a status error, or
// the status message when there is none.
func UserMessage(err error) string {
	st := status.Convert(err)
	for _, detail := range st.Details() {
		if localized, ok := detail.(*errdetails.LocalizedMessage); ok && localized.GetMessage() != "" {
			return localized.GetMessage()
		}
	}
	return st.Message()
}

// ErrorReason returns the ErrorInfo reason (the dicetower error code) of a
// status error, or "" when absent.
func ErrorReason(err error) string {
	for _, detail := range status.Convert(err).Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

// IsCallerError reports whether err was caused by the request rather than
// the server.
func IsCallerError(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
