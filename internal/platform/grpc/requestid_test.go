package grpc

import (
	"context"
	"testing"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")
	if got := RequestIDFromContext(ctx); got != "req-7" {
		t.Fatalf("RequestIDFromContext = %q, want req-7", got)
	}
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("expected empty id for nil context, got %q", got)
	}
}

func TestRequestIDUnaryServerInterceptorUsesIncoming(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, " abc "))
	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	}

	if _, err := RequestIDUnaryServerInterceptor()(ctx, nil, &gogrpc.UnaryServerInfo{}, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen != "abc" {
		t.Fatalf("handler saw request id %q, want abc", seen)
	}
}

func TestRequestIDUnaryServerInterceptorGenerates(t *testing.T) {
	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	}

	if _, err := RequestIDUnaryServerInterceptor()(context.Background(), nil, &gogrpc.UnaryServerInfo{}, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(seen) != 26 {
		t.Fatalf("expected generated 26-char id, got %q", seen)
	}
}

func TestRequestIDUnaryClientInterceptorForwards(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	var forwarded []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *gogrpc.ClientConn, opts ...gogrpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		forwarded = md.Get(RequestIDHeader)
		return nil
	}

	if err := RequestIDUnaryClientInterceptor()(ctx, "/dice.v1.DiceService/RollDice", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(forwarded) != 1 || forwarded[0] != "req-9" {
		t.Fatalf("forwarded = %v, want [req-9]", forwarded)
	}
}
