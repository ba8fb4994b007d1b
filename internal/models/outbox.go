package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outbox delivery statuses. PROCESSING is the in-progress claim marker: a
// worker flips a batch of PENDING rows to PROCESSING atomically before
// dispatching, which is what keeps two workers from owning the same record.
const (
	OutboxStatusPending    = "PENDING"
	OutboxStatusProcessing = "PROCESSING"
	OutboxStatusSent       = "SENT"
	OutboxStatusFailed     = "FAILED"
)

// OutboxEvent is one durable delivery record, written in the same transaction
// as the state change it describes. EventType, SubjectID, Payload and
// CreatedAt are immutable after insert; only delivery-tracking fields change.
type OutboxEvent struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventType     string             `bson:"event_type" json:"event_type"`
	SubjectID     string             `bson:"subject_id" json:"subject_id"`
	Payload       string             `bson:"payload" json:"payload"` // serialized EventEnvelope
	Status        string             `bson:"status" json:"status"`
	Attempts      int                `bson:"attempts" json:"attempts"`
	ClaimID       primitive.ObjectID `bson:"claim_id,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	LastAttemptAt *time.Time         `bson:"last_attempt_at,omitempty" json:"last_attempt_at,omitempty"`
	SentAt        *time.Time         `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	LastError     string             `bson:"last_error,omitempty" json:"last_error,omitempty"`
}
