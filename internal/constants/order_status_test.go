package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("MapsEveryKnownStatus", func(t *testing.T) {
		expected := map[OrderStatus]SettlementState{
			OrderPendingAcceptance: StateOpen,
			OrderAccepted:          StateOpen,
			OrderEscrowFunding:     StateOpen,
			OrderEscrowedPartial:   StateEscrowed,
			OrderEscrowedFull:      StateEscrowed,
			OrderFiatSent:          StatePaid,
			OrderFiatConfirmed:     StatePaid,
			OrderReleasing:         StateCompleted,
			OrderReleased:          StateCompleted,
			OrderDisputed:          StateDisputed,
			OrderCancelled:         StateCancelled,
			OrderExpired:           StateCancelled,
		}

		for status, want := range expected {
			got, err := Normalize(status)
			require.NoError(t, err, "status %s", status)
			assert.Equal(t, want, got, "status %s", status)
		}

		// Every status the vocabulary exports must be covered above, so a new
		// status cannot slip in without this test noticing.
		assert.Len(t, expected, len(KnownOrderStatuses()))
	})

	t.Run("UnknownStatusFailsLoudly", func(t *testing.T) {
		for _, s := range []OrderStatus{"", "unknown", "PENDING_ACCEPTANCE", "escrowed"} {
			state, err := Normalize(s)
			assert.ErrorIs(t, err, ErrUnrecognizedStatus, "status %q", s)
			assert.Empty(t, state)
		}
	})

	t.Run("EscrowCollapse", func(t *testing.T) {
		// Adjacent fine-grained escrow steps collapse to the same coarse
		// state; a transition between them is not delivery-worthy.
		partial, err := Normalize(OrderEscrowedPartial)
		require.NoError(t, err)
		full, err := Normalize(OrderEscrowedFull)
		require.NoError(t, err)
		assert.Equal(t, partial, full)
	})
}

func TestOrderStatusKnown(t *testing.T) {
	for _, s := range KnownOrderStatuses() {
		assert.True(t, s.Known(), "status %s", s)
	}
	assert.False(t, OrderStatus("refunded").Known())
}

func TestEventTypeValid(t *testing.T) {
	for _, e := range []EventType{EventOrderCreated, EventOrderStatusChanged, EventDisputeRaised, EventDisputeResolved} {
		assert.True(t, e.Valid())
	}
	assert.False(t, EventType("order_deleted").Valid())
}
