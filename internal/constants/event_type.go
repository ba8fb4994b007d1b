package constants

// EventType tags an outbox record with the kind of business event it carries.
// Each type has its own payload shape, see models.EventEnvelope.
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventDisputeRaised      EventType = "dispute_raised"
	EventDisputeResolved    EventType = "dispute_resolved"
)

func (e EventType) String() string { return string(e) }

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventOrderCreated, EventOrderStatusChanged, EventDisputeRaised, EventDisputeResolved:
		return true
	}
	return false
}
