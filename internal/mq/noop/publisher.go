package noop

import (
	"context"

	"peerpay_settlement/internal/mq"
)

// Publisher implements mq.Publisher without doing anything. Used when the
// notification side-channel is disabled.
type Publisher struct{}

// NewPublisher creates a new NoOp Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish does nothing and returns nil.
func (p *Publisher) Publish(ctx context.Context, topic string, body []byte) error {
	return nil
}

// Close does nothing.
func (p *Publisher) Close() {
}

var _ mq.Publisher = (*Publisher)(nil)
