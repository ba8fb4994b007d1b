package models

import "encoding/json"

// EventEnvelope is the serialized outbox payload: a tagged union keyed by
// Type. Data holds the type-specific payload below. Seq is a process-wide
// monotonic sequence number; clients that need strict per-order ordering
// reconcile with it, since concurrent dispatch does not preserve submission
// order.
type EventEnvelope struct {
	Type    string          `json:"type"`
	OrderID string          `json:"order_id"`
	Seq     uint64          `json:"seq"`
	Data    json.RawMessage `json:"data"`
}

// OrderCreatedData is the payload for an order_created event.
type OrderCreatedData struct {
	BuyerID        string `json:"buyer_id"`
	SellerID       string `json:"seller_id"`
	Amount         string `json:"amount"`
	CryptoCurrency string `json:"crypto_currency"`
	FiatCurrency   string `json:"fiat_currency"`
}

// StatusChangedData is the payload for an order_status_changed event. From and
// To carry the fine-grained statuses; the worker enriches the outbound message
// with the normalized settlement state.
type StatusChangedData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DisputeRaisedData is the payload for a dispute_raised event.
type DisputeRaisedData struct {
	RaisedBy string `json:"raised_by"`
	Reason   string `json:"reason"`
}

// DisputeResolvedData is the payload for a dispute_resolved event.
type DisputeResolvedData struct {
	ResolvedBy string `json:"resolved_by"`
	Resolution string `json:"resolution"`
}

// LiveMessage is the channel-appropriate projection of an envelope pushed to
// live connections and the notification queue. State is filled for status
// changes only.
type LiveMessage struct {
	Type    string          `json:"type"`
	OrderID string          `json:"order_id"`
	Seq     uint64          `json:"seq"`
	State   string          `json:"state,omitempty"`
	Data    json.RawMessage `json:"data"`
}
