package worker

import (
	"context"
	"errors"
	"time"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/dao/mongodb"
	"peerpay_settlement/internal/dao/repository"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultMonitorInterval = 10 * time.Second

// HealthMonitor reads worker heartbeats and reflects their staleness into the
// gRPC health service, so platform probes can distinguish "worker alive but
// records failing" from "worker dead" without talking to the store.
type HealthMonitor struct {
	heartbeats repository.HeartbeatRepository
	health     *health.Server
	worker     string
	interval   time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
}

// NewHealthMonitor creates a new HealthMonitor for the named worker. The
// staleness window is StaleCycles times the worker's poll interval.
func NewHealthMonitor(
	heartbeats repository.HeartbeatRepository,
	healthServer *health.Server,
	logger *zap.Logger,
	cfg *conf.WorkerConfig,
) *HealthMonitor {
	m := &HealthMonitor{
		heartbeats: heartbeats,
		health:     healthServer,
		worker:     "outbox_processor",
		interval:   defaultMonitorInterval,
		logger:     logger.Named("HealthMonitor"),
	}

	pollInterval := defaultInterval
	staleCycles := 3
	if cfg != nil {
		if cfg.Outbox.Name != "" {
			m.worker = cfg.Outbox.Name
		}
		if cfg.Outbox.IntervalSeconds > 0 {
			pollInterval = time.Duration(cfg.Outbox.IntervalSeconds) * time.Second
		}
		if cfg.HealthMonitor.IntervalSeconds > 0 {
			m.interval = time.Duration(cfg.HealthMonitor.IntervalSeconds) * time.Second
		}
		if cfg.HealthMonitor.StaleCycles > 0 {
			staleCycles = cfg.HealthMonitor.StaleCycles
		}
	}
	m.staleAfter = time.Duration(staleCycles) * pollInterval

	return m
}

// Start runs the monitor loop until the context is cancelled.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.logger.Info("Health monitor started",
		zap.String("worker", m.worker),
		zap.Duration("staleAfter", m.staleAfter),
	)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check(ctx)
		case <-ctx.Done():
			m.logger.Info("Health monitor shutting down")
			return
		}
	}
}

func (m *HealthMonitor) check(ctx context.Context) {
	hb, err := m.heartbeats.Get(ctx, m.worker)
	if err != nil {
		if !errors.Is(err, mongodb.ErrNotFound) {
			m.logger.Warn("Failed to read worker heartbeat", zap.Error(err))
		}
		m.health.SetServingStatus(m.worker, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}

	if time.Since(hb.LastCycleAt) > m.staleAfter {
		m.logger.Warn("Worker heartbeat is stale",
			zap.String("worker", m.worker),
			zap.Time("lastCycleAt", hb.LastCycleAt),
		)
		m.health.SetServingStatus(m.worker, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}

	m.health.SetServingStatus(m.worker, healthpb.HealthCheckResponse_SERVING)
}

var _ Worker = (*HealthMonitor)(nil)
