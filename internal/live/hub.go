package live

import (
	"context"
	"sync"

	"peerpay_settlement/internal/conf"

	"go.uber.org/zap"
)

const defaultSendBuffer = 32

// Subscriber is one live connection's view of the hub: a bounded outbound
// channel the transport drains, plus a done signal set on unsubscribe. The
// out channel is never closed so a concurrent Deliver can always attempt a
// non-blocking send.
type Subscriber struct {
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Out returns the channel the transport reads outbound messages from.
func (s *Subscriber) Out() <-chan []byte {
	return s.out
}

// Done is closed when the subscriber has been removed from the hub.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Hub is the in-process live-delivery bridge: a routing key (order id) fans
// out to every currently-subscribed connection. Purely best-effort and
// process-local; nothing survives a restart.
type Hub struct {
	mu         sync.Mutex
	subs       map[string]map[*Subscriber]struct{}
	sendBuffer int
	logger     *zap.Logger
}

// NewHub creates a new Hub. The configured send buffer bounds each
// subscriber's outbound queue; zero or negative uses the default.
func NewHub(cfg *conf.LiveConfig, logger *zap.Logger) *Hub {
	sendBuffer := defaultSendBuffer
	if cfg != nil && cfg.SendBuffer > 0 {
		sendBuffer = cfg.SendBuffer
	}
	return &Hub{
		subs:       make(map[string]map[*Subscriber]struct{}),
		sendBuffer: sendBuffer,
		logger:     logger.Named("LiveHub"),
	}
}

// Subscribe registers a new subscriber for the routing key.
func (h *Hub) Subscribe(routingKey string) *Subscriber {
	sub := &Subscriber{
		out:  make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[routingKey]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[routingKey] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and signals its done channel. Safe to
// call more than once.
func (h *Hub) Unsubscribe(routingKey string, sub *Subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[routingKey]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, routingKey)
		}
	}
	h.mu.Unlock()

	sub.close()
}

// Deliver fans the message out to every subscriber of the routing key. A key
// with zero subscribers is a no-op success: once nobody is listening the
// event has no durable "undelivered" meaning. Sends never block; a full
// outbound buffer drops the message for that connection and the client
// reconciles on its next refresh.
func (h *Hub) Deliver(ctx context.Context, routingKey string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	targets := make([]*Subscriber, 0, len(h.subs[routingKey]))
	for sub := range h.subs[routingKey] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}

	dropped := 0
	for _, sub := range targets {
		select {
		case <-sub.done:
		case sub.out <- message:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("Dropped live message on full buffer",
			zap.String("routing_key", routingKey),
			zap.Int("dropped", dropped),
			zap.Int("subscribers", len(targets)),
		)
	}
	return nil
}

// SubscriberCount reports the number of open subscriptions for a routing key.
func (h *Hub) SubscriberCount(routingKey string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[routingKey])
}
