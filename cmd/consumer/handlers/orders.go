package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/constants"
	"peerpay_settlement/internal/db"
	"peerpay_settlement/internal/logic"
	"peerpay_settlement/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderLifecycleHandler ingests order lifecycle messages from the marketplace
// core and records them in the outbox. The outbox write runs in a transaction
// so a record is durable exactly once per acknowledged message.
type OrderLifecycleHandler struct {
	publisher *logic.OrderEventPublisher
	tm        db.TransactionManager
	logger    *zap.Logger
	cfg       *conf.RabbitMQConfig
}

// NewOrderLifecycleHandler creates a new OrderLifecycleHandler.
func NewOrderLifecycleHandler(publisher *logic.OrderEventPublisher, tm db.TransactionManager, logger *zap.Logger, cfg *conf.RabbitMQConfig) *OrderLifecycleHandler {
	return &OrderLifecycleHandler{
		publisher: publisher,
		tm:        tm,
		logger:    logger.Named("OrderLifecycleHandler"),
		cfg:       cfg,
	}
}

// QueueName returns the name of the queue this handler subscribes to.
func (h *OrderLifecycleHandler) QueueName() string {
	return h.cfg.OrderLifecycleQueue
}

// lifecycleMessage is the inbound wire shape published by the marketplace core.
type lifecycleMessage struct {
	Type    string          `json:"type"`
	OrderID string          `json:"order_id"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Handle records one lifecycle message in the outbox.
func (h *OrderLifecycleHandler) Handle(ctx context.Context, d amqp.Delivery) error {
	var msg lifecycleMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		h.logger.Error("Failed to unmarshal lifecycle message", zap.Error(err), zap.ByteString("body", d.Body))
		return nil // Poison pill, ACK and remove.
	}
	if msg.OrderID == "" {
		h.logger.Error("Lifecycle message missing order_id", zap.ByteString("body", d.Body))
		return nil // Poison pill, ACK and remove.
	}

	_, err := h.tm.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		switch constants.EventType(msg.Type) {
		case constants.EventOrderCreated:
			var data models.OrderCreatedData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				h.logger.Error("Malformed order_created data, dropping", zap.Error(err), zap.String("order_id", msg.OrderID))
				return nil, nil
			}
			_, err := h.publisher.PublishOrderCreated(sessCtx, msg.OrderID, data)
			return nil, err

		case constants.EventOrderStatusChanged:
			_, err := h.publisher.PublishStatusChanged(sessCtx, msg.OrderID,
				constants.OrderStatus(msg.From), constants.OrderStatus(msg.To))
			return nil, err

		case constants.EventDisputeRaised:
			var data models.DisputeRaisedData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				h.logger.Error("Malformed dispute_raised data, dropping", zap.Error(err), zap.String("order_id", msg.OrderID))
				return nil, nil
			}
			_, err := h.publisher.PublishDisputeRaised(sessCtx, msg.OrderID, data)
			return nil, err

		case constants.EventDisputeResolved:
			var data models.DisputeResolvedData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				h.logger.Error("Malformed dispute_resolved data, dropping", zap.Error(err), zap.String("order_id", msg.OrderID))
				return nil, nil
			}
			_, err := h.publisher.PublishDisputeResolved(sessCtx, msg.OrderID, data)
			return nil, err

		default:
			h.logger.Error("Unrecognized lifecycle message type, dropping", zap.String("type", msg.Type), zap.String("order_id", msg.OrderID))
			return nil, nil
		}
	})

	if err != nil {
		// Transient store failure: requeue and try again.
		return fmt.Errorf("failed to record lifecycle message for order %s: %w", msg.OrderID, err)
	}

	return nil
}
