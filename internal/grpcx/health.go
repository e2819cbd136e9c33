// Package grpcx serves the gRPC health protocol for the catalog service.
package grpcx

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CatalogService is the service name reported alongside the overall ("") status.
const CatalogService = "farmmarket.catalog"

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer returns a gRPC server with the health service registered. Both
// statuses start NOT_SERVING until the first Refresh.
func NewServer(opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(CatalogService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// Refresh pings the store once and publishes the result.
func Refresh(ctx context.Context, hs *health.Server, p Pinger) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := p.Ping(ctx); err != nil {
		zap.L().Warn("catalog store ping failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", st)
	hs.SetServingStatus(CatalogService, st)
	return st
}

// Watch pings the store immediately and then on every tick until ctx is done, when it
// marks the server as shutting down.
func Watch(ctx context.Context, hs *health.Server, p Pinger, every time.Duration) {
	Refresh(ctx, hs, p)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			Refresh(ctx, hs, p)
		}
	}
}
