package repository

import (
	"context"

	"peerpay_settlement/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OutboxRepository owns all OutboxEvent state. Only the enqueue path creates
// records; workers claim and update them but never delete (retention is an
// external policy).
type OutboxRepository interface {
	// Create inserts a new PENDING record. It must be called with the
	// caller's session context so the insert joins the surrounding
	// transaction: if that transaction rolls back, the event was never
	// recorded.
	Create(ctx context.Context, event *models.OutboxEvent) error
	// ClaimDue atomically claims up to limit due records, oldest first,
	// excluding records at or past the attempt ceiling. Two concurrent
	// workers never both own the same record.
	ClaimDue(ctx context.Context, limit int, maxAttempts int) ([]*models.OutboxEvent, error)
	// MarkSent flips the record to SENT, sets sent_at and clears last_error.
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	// MarkFailed increments attempts and records the error; the record goes
	// back to PENDING, or to FAILED once attempts reaches maxAttempts.
	MarkFailed(ctx context.Context, id primitive.ObjectID, errText string, maxAttempts int) error
	// CountsByStatus returns the number of records per delivery status.
	CountsByStatus(ctx context.Context) (map[string]int64, error)
	// Recent lists records with the given status, most recent first. The
	// limit is capped regardless of the caller-supplied value.
	Recent(ctx context.Context, status string, limit int64) ([]*models.OutboxEvent, error)
}

// HeartbeatRepository stores per-worker liveness records.
type HeartbeatRepository interface {
	Upsert(ctx context.Context, hb *models.WorkerHeartbeat) error
	Get(ctx context.Context, worker string) (*models.WorkerHeartbeat, error)
	All(ctx context.Context) ([]*models.WorkerHeartbeat, error)
}
