package constants

import "errors"

// OrderStatus is the fine-grained status vocabulary of the settlement state
// machine. It evolves with the escrow flow and is not meant for external
// consumers.
type OrderStatus string

// SettlementState is the coarse, stable vocabulary derived from OrderStatus.
// Delivery payloads and API serialization branch on this set only.
type SettlementState string

const (
	OrderPendingAcceptance OrderStatus = "pending_acceptance"
	OrderAccepted          OrderStatus = "accepted"
	OrderEscrowFunding     OrderStatus = "escrow_funding"
	OrderEscrowedPartial   OrderStatus = "escrowed_partial"
	OrderEscrowedFull      OrderStatus = "escrowed_full"
	OrderFiatSent          OrderStatus = "fiat_sent"
	OrderFiatConfirmed     OrderStatus = "fiat_confirmed"
	OrderReleasing         OrderStatus = "releasing"
	OrderReleased          OrderStatus = "released"
	OrderDisputed          OrderStatus = "disputed"
	OrderCancelled         OrderStatus = "cancelled"
	OrderExpired           OrderStatus = "expired"
)

const (
	StateOpen      SettlementState = "open"
	StateEscrowed  SettlementState = "escrowed"
	StatePaid      SettlementState = "paid"
	StateCompleted SettlementState = "completed"
	StateDisputed  SettlementState = "disputed"
	StateCancelled SettlementState = "cancelled"
)

// ErrUnrecognizedStatus is returned by Normalize for any status outside the
// known vocabulary. Unknown values must fail loudly so that a new fine-grained
// status added without a mapping entry is caught immediately instead of being
// silently misclassified.
var ErrUnrecognizedStatus = errors.New("unrecognized order status")

var stateByStatus = map[OrderStatus]SettlementState{
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

// Normalize maps a fine-grained order status to its settlement state.
func Normalize(s OrderStatus) (SettlementState, error) {
	state, ok := stateByStatus[s]
	if !ok {
		return "", ErrUnrecognizedStatus
	}
	return state, nil
}

// Known reports whether s is part of the fine-grained vocabulary.
func (s OrderStatus) Known() bool {
	_, ok := stateByStatus[s]
	return ok
}

func (s OrderStatus) String() string { return string(s) }

func (s SettlementState) String() string { return string(s) }

// KnownOrderStatuses returns the full fine-grained vocabulary.
func KnownOrderStatuses() []OrderStatus {
	out := make([]OrderStatus, 0, len(stateByStatus))
	for s := range stateByStatus {
		out = append(out, s)
	}
	return out
}
