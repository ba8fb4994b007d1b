package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/dao/mongodb"
	"peerpay_settlement/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func newTestHealthMonitor(heartbeats *mockHeartbeatRepository) (*HealthMonitor, *health.Server) {
	cfg := &conf.WorkerConfig{}
	cfg.Outbox.Name = "outbox_processor"
	cfg.Outbox.IntervalSeconds = 5
	cfg.HealthMonitor.StaleCycles = 3
	srv := health.NewServer()
	return NewHealthMonitor(heartbeats, srv, zap.NewNop(), cfg), srv
}

func servingStatus(t *testing.T, srv *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestHealthMonitor_Check(t *testing.T) {
	t.Run("FreshHeartbeatIsServing", func(t *testing.T) {
		heartbeats := newMockHeartbeatRepository()
		m, srv := newTestHealthMonitor(heartbeats)

		heartbeats.On("Get", mock.Anything, "outbox_processor").
			Return(&models.WorkerHeartbeat{
				Worker:      "outbox_processor",
				LastCycleAt: time.Now(),
			}, nil).Once()

		m.check(context.Background())
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, "outbox_processor"))
	})

	t.Run("StaleHeartbeatIsNotServing", func(t *testing.T) {
		heartbeats := newMockHeartbeatRepository()
		m, srv := newTestHealthMonitor(heartbeats)

		// staleAfter = 3 cycles of 5s; a minute-old heartbeat is well past it.
		heartbeats.On("Get", mock.Anything, "outbox_processor").
			Return(&models.WorkerHeartbeat{
				Worker:      "outbox_processor",
				LastCycleAt: time.Now().Add(-time.Minute),
			}, nil).Once()

		m.check(context.Background())
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, "outbox_processor"))
	})

	t.Run("MissingHeartbeatIsNotServing", func(t *testing.T) {
		heartbeats := newMockHeartbeatRepository()
		m, srv := newTestHealthMonitor(heartbeats)

		heartbeats.On("Get", mock.Anything, "outbox_processor").
			Return(nil, mongodb.ErrNotFound).Once()

		m.check(context.Background())
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, "outbox_processor"))
	})

	t.Run("StoreErrorIsNotServing", func(t *testing.T) {
		heartbeats := newMockHeartbeatRepository()
		m, srv := newTestHealthMonitor(heartbeats)

		heartbeats.On("Get", mock.Anything, "outbox_processor").
			Return(nil, errors.New("store unavailable")).Once()

		m.check(context.Background())
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, "outbox_processor"))
	})
}
