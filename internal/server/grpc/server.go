package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/database"
	"github.com/Additional-Code/runner/pkg/errorbank"
)

const healthInterval = 15 * time.Second

// Module exposes the gRPC server and lifecycle hooks to Fx.
var Module = fx.Module("grpc_server",
	fx.Provide(NewServer, health.NewServer),
	fx.Invoke(Run),
)

// NewServer builds a gRPC server exposing the standard health service.
func NewServer(logger *zap.Logger, healthSrv *health.Server) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryInterceptor(logger)),
		grpc.ChainStreamInterceptor(streamInterceptor(logger)),
	)
	healthpb.RegisterHealthServer(server, healthSrv)
	return server
}

func unaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		err = toStatus(err)
		logCall(logger, "unary", info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

func streamInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := toStatus(handler(srv, ss))
		logCall(logger, "stream", info.FullMethod, time.Since(start), err)
		return err
	}
}

func logCall(logger *zap.Logger, kind, method string, d time.Duration, err error) {
	fields := []zap.Field{zap.String("kind", kind), zap.String("method", method), zap.Duration("duration", d)}
	if err != nil {
		logger.Warn("grpc call failed", append(fields, zap.Error(err))...)
		return
	}
	logger.Debug("grpc call finished", fields...)
}

// toStatus converts AppErrors into gRPC status errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		return status.Error(appErr.GRPCCode(), appErr.Message())
	}
	return err
}

// Run binds the gRPC server when enabled and keeps the health status in
// line with database reachability.
func Run(lc fx.Lifecycle, cfg config.Config, server *grpc.Server, healthSrv *health.Server, conns *database.Connections, logger *zap.Logger) {
	if !cfg.GRPC.Enabled {
		logger.Info("grpc server disabled")
		return
	}

	addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	service := cfg.Observability.ServiceName
	watchCtx, stopWatch := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				stopWatch()
				return fmt.Errorf("listen grpc: %w", err)
			}
			logger.Info("starting gRPC server", zap.String("addr", addr))

			go watchDatabase(watchCtx, healthSrv, service, conns.Ping, logger)
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					logger.Fatal("grpc server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping gRPC server")
			stopWatch()
			healthSrv.Shutdown()

			stopped := make(chan struct{})
			go func() {
				server.GracefulStop()
				close(stopped)
			}()

			select {
			case <-ctx.Done():
				server.Stop()
				return ctx.Err()
			case <-stopped:
				return nil
			}
		},
	})
}

// watchDatabase reports SERVING for service and the overall server while ping succeeds.
func watchDatabase(ctx context.Context, healthSrv *health.Server, service string, ping func(context.Context) error, logger *zap.Logger) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err := ping(pingCtx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("database ping failed", zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		healthSrv.SetServingStatus("", st)
		healthSrv.SetServingStatus(service, st)
	}

	check()
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
