// Package health exposes the standard gRPC health service so orchestrators
// can check whether the bot is polling.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/debtkeeper/internal/logging"
)

// ServiceName is the health entry that follows the chat transport.
const ServiceName = "debtkeeper.Bot"

type Server struct {
	address string
	logger  logging.Logger
	srv     *grpc.Server
	health  *health.Server
}

// NewServer registers the health service. Both the overall entry ("") and
// ServiceName start as NOT_SERVING.
func NewServer(address string, l logging.Logger) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "health"),
		health:  health.NewServer(),
	}
	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	grpc_health_v1.RegisterHealthServer(s.srv, s.health)
	s.SetServing(false)
	return s
}

// SetServing flips both health entries.
func (s *Server) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.srv.Serve(lis)
	}()

	s.logger.Info(ctx, "Starting health server", "address", lis.Addr().String())

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping health server...")
		s.health.Shutdown()
		s.srv.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "health call failed", "method", info.FullMethod, "error", err)
	} else {
		s.logger.Debug(ctx, "health call", "method", info.FullMethod)
	}
	return resp, err
}
