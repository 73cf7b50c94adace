package dice

import (
	"context"
	"log"
	"time"

	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// AccessLogInterceptor logs one line per unary call.
func AccessLogInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Printf("grpc %s request=%s code=%s duration=%s",
			info.FullMethod,
			platformgrpc.RequestIDFromContext(ctx),
			status.Code(err),
			time.Since(start).Round(time.Microsecond),
		)
		return resp, err
	}
}
