package handlers

import (
	"context"
	"encoding/json"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NotificationHandler drains the order-events queue the delivery worker
// mirrors sent events to. The actual Telegram/push bridges are external
// collaborators; this handler is the hand-off point and logs each dispatch.
type NotificationHandler struct {
	logger *zap.Logger
	cfg    *conf.RabbitMQConfig
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(logger *zap.Logger, cfg *conf.RabbitMQConfig) *NotificationHandler {
	return &NotificationHandler{
		logger: logger.Named("NotificationHandler"),
		cfg:    cfg,
	}
}

// QueueName returns the name of the queue this handler subscribes to.
func (h *NotificationHandler) QueueName() string {
	return h.cfg.OrderEventsTopic
}

// Handle forwards one delivered event to the notification sink.
func (h *NotificationHandler) Handle(ctx context.Context, d amqp.Delivery) error {
	var msg models.LiveMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		h.logger.Error("Failed to unmarshal event message", zap.Error(err), zap.ByteString("body", d.Body))
		return nil // Poison pill, ACK and remove.
	}

	h.logger.Info("Dispatching notification",
		zap.String("type", msg.Type),
		zap.String("order_id", msg.OrderID),
		zap.Uint64("seq", msg.Seq),
		zap.String("state", msg.State),
	)
	return nil
}
