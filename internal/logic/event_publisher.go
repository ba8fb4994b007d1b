package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"peerpay_settlement/internal/constants"
	"peerpay_settlement/internal/dao/repository"
	"peerpay_settlement/internal/models"
	"peerpay_settlement/pkg/snowflake"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderEventPublisher is the enqueue boundary: state-changing operations call
// it with their session context so the outbox record is written in the same
// transaction as the state change it describes. Failures propagate to the
// caller, which decides whether to roll back.
type OrderEventPublisher struct {
	outboxRepo repository.OutboxRepository
	seq        *snowflake.Generator
}

// NewOrderEventPublisher creates a new OrderEventPublisher.
func NewOrderEventPublisher(outboxRepo repository.OutboxRepository, seq *snowflake.Generator) *OrderEventPublisher {
	return &OrderEventPublisher{
		outboxRepo: outboxRepo,
		seq:        seq,
	}
}

// PublishOrderCreated enqueues an order_created event.
func (p *OrderEventPublisher) PublishOrderCreated(ctx context.Context, orderID string, data models.OrderCreatedData) (primitive.ObjectID, error) {
	return p.publish(ctx, constants.EventOrderCreated, orderID, data)
}

// PublishStatusChanged enqueues an order_status_changed event carrying the
// fine-grained from/to statuses. Normalization happens at delivery time.
func (p *OrderEventPublisher) PublishStatusChanged(ctx context.Context, orderID string, from, to constants.OrderStatus) (primitive.ObjectID, error) {
	return p.publish(ctx, constants.EventOrderStatusChanged, orderID, models.StatusChangedData{
		From: from.String(),
		To:   to.String(),
	})
}

// PublishDisputeRaised enqueues a dispute_raised event.
func (p *OrderEventPublisher) PublishDisputeRaised(ctx context.Context, orderID string, data models.DisputeRaisedData) (primitive.ObjectID, error) {
	return p.publish(ctx, constants.EventDisputeRaised, orderID, data)
}

// PublishDisputeResolved enqueues a dispute_resolved event.
func (p *OrderEventPublisher) PublishDisputeResolved(ctx context.Context, orderID string, data models.DisputeResolvedData) (primitive.ObjectID, error) {
	return p.publish(ctx, constants.EventDisputeResolved, orderID, data)
}

func (p *OrderEventPublisher) publish(ctx context.Context, eventType constants.EventType, orderID string, data any) (primitive.ObjectID, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		// A payload that cannot be constructed is fatal for the surrounding transaction.
		return primitive.NilObjectID, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	seq, err := p.seq.NextID()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to generate event sequence: %w", err)
	}

	envelope := models.EventEnvelope{
		Type:    eventType.String(),
		OrderID: orderID,
		Seq:     seq,
		Data:    dataBytes,
	}
	payloadBytes, err := json.Marshal(envelope)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to marshal %s envelope: %w", eventType, err)
	}

	event := &models.OutboxEvent{
		ID:        primitive.NewObjectID(),
		EventType: eventType.String(),
		SubjectID: orderID,
		Payload:   string(payloadBytes),
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now(),
	}

	if err := p.outboxRepo.Create(ctx, event); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create %s outbox record: %w", eventType, err)
	}
	return event.ID, nil
}
