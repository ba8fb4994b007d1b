package live

import (
	"context"
	"testing"

	"peerpay_settlement/internal/conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(sendBuffer int) *Hub {
	return NewHub(&conf.LiveConfig{SendBuffer: sendBuffer}, zap.NewNop())
}

func TestHub_Deliver(t *testing.T) {
	t.Run("FansOutToAllSubscribers", func(t *testing.T) {
		hub := newTestHub(4)
		sub1 := hub.Subscribe("order-1")
		sub2 := hub.Subscribe("order-1")
		other := hub.Subscribe("order-2")

		require.NoError(t, hub.Deliver(context.Background(), "order-1", []byte(`{"seq":1}`)))

		assert.Equal(t, []byte(`{"seq":1}`), <-sub1.Out())
		assert.Equal(t, []byte(`{"seq":1}`), <-sub2.Out())
		select {
		case msg := <-other.Out():
			t.Fatalf("subscriber of another key received %q", msg)
		default:
		}
	})

	t.Run("ZeroSubscribersIsSuccess", func(t *testing.T) {
		hub := newTestHub(4)
		require.NoError(t, hub.Deliver(context.Background(), "order-nobody", []byte("x")))
	})

	t.Run("FullBufferDropsWithoutBlocking", func(t *testing.T) {
		hub := newTestHub(1)
		sub := hub.Subscribe("order-1")

		require.NoError(t, hub.Deliver(context.Background(), "order-1", []byte("first")))
		// The buffer holds one message; this one is dropped for the slow
		// subscriber but Deliver still succeeds.
		require.NoError(t, hub.Deliver(context.Background(), "order-1", []byte("second")))

		assert.Equal(t, []byte("first"), <-sub.Out())
		select {
		case msg := <-sub.Out():
			t.Fatalf("expected drop, got %q", msg)
		default:
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		hub := newTestHub(4)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, hub.Deliver(ctx, "order-1", []byte("x")))
	})
}

func TestHub_Unsubscribe(t *testing.T) {
	t.Run("SignalsDoneAndStopsDelivery", func(t *testing.T) {
		hub := newTestHub(4)
		sub := hub.Subscribe("order-1")
		require.Equal(t, 1, hub.SubscriberCount("order-1"))

		hub.Unsubscribe("order-1", sub)
		assert.Equal(t, 0, hub.SubscriberCount("order-1"))

		select {
		case <-sub.Done():
		default:
			t.Fatal("done channel not closed after unsubscribe")
		}

		require.NoError(t, hub.Deliver(context.Background(), "order-1", []byte("late")))
		select {
		case msg := <-sub.Out():
			t.Fatalf("unsubscribed connection received %q", msg)
		default:
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		hub := newTestHub(4)
		sub := hub.Subscribe("order-1")
		hub.Unsubscribe("order-1", sub)
		hub.Unsubscribe("order-1", sub)
	})
}
