package grpcx

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type pinger struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (p *pinger) Ping(context.Context) error {
	p.calls.Add(1)
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func status(t *testing.T, hs *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestNewServer_StartsNotServing(t *testing.T) {
	srv, hs := NewServer()
	defer srv.Stop()

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, hs, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, hs, CatalogService))
}

func TestRefresh_FollowsStore(t *testing.T) {
	srv, hs := NewServer()
	defer srv.Stop()
	p := &pinger{}

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, Refresh(context.Background(), hs, p))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, hs, CatalogService))

	p.down.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, Refresh(context.Background(), hs, p))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, hs, ""))
}

func TestWatch_RefreshesUntilCancelled(t *testing.T) {
	srv, hs := NewServer()
	defer srv.Stop()
	p := &pinger{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, hs, p, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, hs, CatalogService))

	cancel()
	<-done
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, hs, CatalogService))
}

func TestCheck_OverTheWire(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv, hs := NewServer()
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := Check(ctx, lis.Addr().String(), CatalogService)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)

	Refresh(ctx, hs, &pinger{})
	st, err = Check(ctx, lis.Addr().String(), CatalogService)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	_, err = Check(ctx, lis.Addr().String(), "no.such.service")
	assert.Error(t, err)
}
