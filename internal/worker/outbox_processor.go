package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/constants"
	"peerpay_settlement/internal/dao/repository"
	"peerpay_settlement/internal/logic"
	"peerpay_settlement/internal/models"
	"peerpay_settlement/internal/mq"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Bridge is the live-delivery fan-out the processor dispatches through. An
// accepted message counts as delivered even with zero subscribers; only an
// actual failure (serialization, bridge down) is an error.
type Bridge interface {
	Deliver(ctx context.Context, routingKey string, message []byte) error
}

const (
	defaultInterval        = 5 * time.Second
	defaultBatchSize       = 50
	defaultMaxAttempts     = 5
	defaultParallelism     = 8
	defaultDispatchTimeout = 10 * time.Second
	recordTimeout          = 5 * time.Second
)

// OutboxProcessor periodically polls the outbox collection, claims due
// records and fans them out through the live bridge, mirroring sent events to
// the notification queue. The processor never crashes on a single record's
// failure; store-level errors abort the cycle and the next tick retries.
type OutboxProcessor struct {
	outboxRepo repository.OutboxRepository
	heartbeats repository.HeartbeatRepository
	bridge     Bridge
	publisher  mq.Publisher
	topic      logic.OrderEventsTopic
	logger     *zap.Logger

	name            string
	interval        time.Duration
	batchSize       int
	maxAttempts     int
	parallelism     int
	dispatchTimeout time.Duration
}

// NewOutboxProcessor creates a new instance of the outbox processor. The
// bridge is an explicit dependency so tests can substitute a double; the
// publisher may be a noop when the notification side-channel is disabled.
func NewOutboxProcessor(
	outboxRepo repository.OutboxRepository,
	heartbeats repository.HeartbeatRepository,
	bridge Bridge,
	publisher mq.Publisher,
	topic logic.OrderEventsTopic,
	logger *zap.Logger,
	cfg *conf.WorkerConfig,
) *OutboxProcessor {
	p := &OutboxProcessor{
		outboxRepo:      outboxRepo,
		heartbeats:      heartbeats,
		bridge:          bridge,
		publisher:       publisher,
		topic:           topic,
		logger:          logger.Named("OutboxProcessor"),
		name:            "outbox_processor",
		interval:        defaultInterval,
		batchSize:       defaultBatchSize,
		maxAttempts:     defaultMaxAttempts,
		parallelism:     defaultParallelism,
		dispatchTimeout: defaultDispatchTimeout,
	}
	if cfg != nil {
		if cfg.Outbox.Name != "" {
			p.name = cfg.Outbox.Name
		}
		if cfg.Outbox.IntervalSeconds > 0 {
			p.interval = time.Duration(cfg.Outbox.IntervalSeconds) * time.Second
		}
		if cfg.Outbox.BatchSize > 0 {
			p.batchSize = cfg.Outbox.BatchSize
		}
		if cfg.Outbox.MaxAttempts > 0 {
			p.maxAttempts = cfg.Outbox.MaxAttempts
		}
		if cfg.Outbox.Parallelism > 0 {
			p.parallelism = cfg.Outbox.Parallelism
		}
		if cfg.Outbox.DispatchTimeoutSeconds > 0 {
			p.dispatchTimeout = time.Duration(cfg.Outbox.DispatchTimeoutSeconds) * time.Second
		}
	}
	return p
}

// Name returns the worker name used for heartbeat records.
func (p *OutboxProcessor) Name() string { return p.name }

// Start begins the worker's polling loop. It respects the context for
// graceful shutdown: an in-flight cycle finishes (bounded by the per-record
// dispatch timeout) before the loop exits.
func (p *OutboxProcessor) Start(ctx context.Context) {
	p.logger.Info("Outbox processor started",
		zap.Duration("interval", p.interval),
		zap.Int("batchSize", p.batchSize),
		zap.Int("maxAttempts", p.maxAttempts),
	)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.RunCycle(ctx)
		case <-ctx.Done():
			p.logger.Info("Outbox processor shutting down")
			return
		}
	}
}

// RunCycle claims a batch of due records and attempts to deliver each one.
// Records are processed independently: one failure never blocks the rest of
// the batch, and each outcome is committed individually. A heartbeat is
// written after every cycle regardless of per-record outcomes.
func (p *OutboxProcessor) RunCycle(ctx context.Context) {
	var failed atomic.Int64

	claimed, err := p.outboxRepo.ClaimDue(ctx, p.batchSize, p.maxAttempts)
	if err != nil {
		p.logger.Error("Failed to claim outbox events", zap.Error(err))
		p.reportHeartbeat(ctx, 0, 0, err)
		return
	}

	if len(claimed) > 0 {
		p.logger.Info("Claimed events for processing", zap.Int("count", len(claimed)))
	}

	g := new(errgroup.Group)
	g.SetLimit(p.parallelism)
	for _, event := range claimed {
		event := event
		g.Go(func() error {
			if !p.processEvent(ctx, event) {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.reportHeartbeat(ctx, len(claimed), int(failed.Load()), nil)
}

// processEvent attempts one delivery and records the outcome. Returns false
// when the attempt was recorded as a failure.
func (p *OutboxProcessor) processEvent(ctx context.Context, event *models.OutboxEvent) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, p.dispatchTimeout)
	defer cancel()

	// Outcome writes run on their own context. A delivery that burns the
	// whole dispatch timeout would otherwise hand MarkFailed an expired
	// context and the record would never accrue an attempt.
	recordCtx, recordCancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer recordCancel()

	message, deliverable, err := p.projectMessage(event)
	if err != nil {
		p.recordFailure(recordCtx, event, err)
		return false
	}

	if deliverable {
		if err := p.bridge.Deliver(attemptCtx, event.SubjectID, message); err != nil {
			p.recordFailure(recordCtx, event, fmt.Errorf("bridge delivery: %w", err))
			return false
		}
		if p.publisher != nil {
			if err := p.publisher.Publish(attemptCtx, string(p.topic), message); err != nil {
				// The live fan-out already happened; retrying this record keeps
				// the notification channel at-least-once at the cost of a
				// duplicate live hint, which clients must tolerate anyway.
				p.recordFailure(recordCtx, event, fmt.Errorf("notification publish: %w", err))
				return false
			}
		}
	}

	if err := p.outboxRepo.MarkSent(recordCtx, event.ID); err != nil {
		// The record stays claimed and is re-delivered after the lease
		// expires; acceptable under at-least-once.
		p.logger.Error("Failed to mark event as sent",
			zap.String("event_id", event.ID.Hex()),
			zap.Error(err),
		)
	}
	return true
}

// projectMessage turns the stored envelope into the channel-appropriate live
// message. Status-change events are delivery-worthy only when the normalized
// settlement state actually changed; a transition within one state is marked
// sent without fan-out. An unrecognized status fails the record loudly.
func (p *OutboxProcessor) projectMessage(event *models.OutboxEvent) ([]byte, bool, error) {
	var envelope models.EventEnvelope
	if err := json.Unmarshal([]byte(event.Payload), &envelope); err != nil {
		return nil, false, fmt.Errorf("decode envelope: %w", err)
	}

	msg := models.LiveMessage{
		Type:    envelope.Type,
		OrderID: envelope.OrderID,
		Seq:     envelope.Seq,
		Data:    envelope.Data,
	}

	if envelope.Type == constants.EventOrderStatusChanged.String() {
		var change models.StatusChangedData
		if err := json.Unmarshal(envelope.Data, &change); err != nil {
			return nil, false, fmt.Errorf("decode status change: %w", err)
		}
		fromState, err := constants.Normalize(constants.OrderStatus(change.From))
		if err != nil {
			return nil, false, fmt.Errorf("normalize %q: %w", change.From, err)
		}
		toState, err := constants.Normalize(constants.OrderStatus(change.To))
		if err != nil {
			return nil, false, fmt.Errorf("normalize %q: %w", change.To, err)
		}
		if fromState == toState {
			return nil, false, nil
		}
		msg.State = toState.String()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, false, fmt.Errorf("encode live message: %w", err)
	}
	return body, true, nil
}

func (p *OutboxProcessor) recordFailure(ctx context.Context, event *models.OutboxEvent, cause error) {
	p.logger.Error("Failed to deliver event",
		zap.String("event_id", event.ID.Hex()),
		zap.String("event_type", event.EventType),
		zap.Int("attempts", event.Attempts),
		zap.Error(cause),
	)
	if err := p.outboxRepo.MarkFailed(ctx, event.ID, cause.Error(), p.maxAttempts); err != nil {
		p.logger.Error("Failed to record delivery failure",
			zap.String("event_id", event.ID.Hex()),
			zap.Error(err),
		)
	}
}

// reportHeartbeat persists the liveness record for this worker. Write
// failures are logged and never stop the poll loop.
func (p *OutboxProcessor) reportHeartbeat(ctx context.Context, claimed, failed int, cycleErr error) {
	hb := &models.WorkerHeartbeat{
		Worker:      p.name,
		LastCycleAt: time.Now(),
		Claimed:     claimed,
		Failed:      failed,
	}
	if cycleErr != nil {
		hb.LastError = cycleErr.Error()
	}

	if counts, err := p.outboxRepo.CountsByStatus(ctx); err == nil {
		hb.QueueDepth = counts[models.OutboxStatusPending]
	} else {
		p.logger.Warn("Failed to read queue depth for heartbeat", zap.Error(err))
	}

	if err := p.heartbeats.Upsert(ctx, hb); err != nil {
		p.logger.Error("Failed to write worker heartbeat", zap.Error(err))
	}
}

var _ Worker = (*OutboxProcessor)(nil)
