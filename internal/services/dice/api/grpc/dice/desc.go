package dice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "dice.v1.DiceService"

// Full method names.
const (
	RollDiceMethod      = "/" + ServiceName + "/RollDice"
	ParseNotationMethod = "/" + ServiceName + "/ParseNotation"
)

// DiceServiceServer is the server API for dice.v1.DiceService.
type DiceServiceServer interface {
	RollDice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ParseNotation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDiceServiceServer registers srv with s.
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceServiceDesc, srv)
}

// DiceServiceDesc describes dice.v1.DiceService.
var DiceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RollDice", Handler: rollDiceHandler},
		{MethodName: "ParseNotation", Handler: parseNotationHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dice/v1/dice.proto",
}

func rollDiceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).RollDice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RollDiceMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiceServiceServer).RollDice(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func parseNotationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).ParseNotation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ParseNotationMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiceServiceServer).ParseNotation(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
