package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/louisbranch/dicetower/internal/core/dice"
	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"github.com/louisbranch/dicetower/internal/platform/timeouts"
	diceservice "github.com/louisbranch/dicetower/internal/services/dice/api/grpc/dice"
	"github.com/louisbranch/dicetower/internal/services/dice/api/httpapi"
	"github.com/louisbranch/dicetower/internal/services/dice/metrics"
	"github.com/louisbranch/dicetower/internal/services/dice/service"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Config selects listen addresses. An empty HTTPAddr disables the HTTP API.
type Config struct {
	GRPCAddr string
	HTTPAddr string
	// Roller overrides the crypto-backed roller, mainly for tests.
	Roller *dice.Roller
}

// Server hosts the dice gRPC API and the HTTP API.
type Server struct {
	grpcListener net.Listener
	httpListener net.Listener
	grpcServer   *grpc.Server
	httpServer   *http.Server
	health       *health.Server
}

// New listens on the configured addresses and builds both servers.
func New(cfg Config) (*Server, error) {
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	var httpListener net.Listener
	if cfg.HTTPAddr != "" {
		httpListener, err = net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			_ = grpcListener.Close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
		}
	}

	m := metrics.New()
	svc := service.New(cfg.Roller, m)

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			platformgrpc.RequestIDUnaryServerInterceptor(),
			diceservice.AccessLogInterceptor(),
		),
	)
	healthServer := health.NewServer()
	diceservice.RegisterDiceServiceServer(grpcServer, diceservice.NewServer(svc))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(diceservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	srv := &Server{
		grpcListener: grpcListener,
		httpListener: httpListener,
		grpcServer:   grpcServer,
		health:       healthServer,
	}
	if httpListener != nil {
		srv.httpServer = &http.Server{
			Handler:           httpapi.NewHandler(svc, m),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}
	return srv, nil
}

// GRPCAddr returns the gRPC listener address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// HTTPAddr returns the HTTP listener address, or "" when HTTP is disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run creates and serves a dice server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs both servers until ctx is cancelled or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	serveErr := make(chan error, 2)
	log.Printf("dice gRPC server listening at %v", s.grpcListener.Addr())
	go func() {
		serveErr <- s.grpcServer.Serve(s.grpcListener)
	}()
	if s.httpServer != nil {
		log.Printf("dice HTTP server listening at %v", s.httpListener.Addr())
		go func() {
			serveErr <- s.httpServer.Serve(s.httpListener)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	s.shutdown()
	if isServerClosed(err) {
		return nil
	}
	return fmt.Errorf("serve dice: %w", err)
}

func (s *Server) shutdown() {
	s.health.Shutdown()
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown dice HTTP server: %v", err)
		}
	}
	s.grpcServer.GracefulStop()
}

// Close releases listeners and stops both servers immediately.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
}

func isServerClosed(err error) bool {
	return err == nil || errors.Is(err, grpc.ErrServerStopped) || errors.Is(err, http.ErrServerClosed)
}
