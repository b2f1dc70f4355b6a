package grpc_control

import (
	"context"
	"fmt"
	"net"

	"feed-monitor/src/logger"
	"feed-monitor/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server hosts the control service and the standard health service
type Server struct {
	Config  models.MServerConfig
	Service *ControlService
	Logger  *logger.Logger

	grpcServer *grpc.Server
	health     *health.Server
}

func NewServer(cfg models.MServerConfig, svc *ControlService, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewLogger("INFO", "GrpcServer")
	}

	gs := grpc.NewServer()
	hs := health.NewServer()
	RegisterRateMonitorServer(gs, svc)
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		Config:     cfg,
		Service:    svc,
		Logger:     log,
		grpcServer: gs,
		health:     hs,
	}
}

// -----------------------------------------------------------------------------

// Run listens on the configured address until ctx is done
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// -----------------------------------------------------------------------------

// Serve reports SERVING while running and NOT_SERVING once ctx is done
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("gRPC control listening on %s", lis.Addr())
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case err := <-errCh:
		s.health.Shutdown()
		return err
	case <-ctx.Done():
	}

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	s.Logger.Info("gRPC control stopped")
	return nil
}
