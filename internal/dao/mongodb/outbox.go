package mongodb

import (
	"context"
	"time"

	"peerpay_settlement/internal/conf"
	"peerpay_settlement/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MaxRecentLimit bounds diagnostic listings regardless of the requested limit.
const MaxRecentLimit = 200

const defaultClaimLease = 60 * time.Second

type OutboxDAO struct {
	outboxCollection *mongo.Collection
	claimLease       time.Duration
}

func NewOutboxDAO(db *mongo.Database, cfg *conf.WorkerConfig) *OutboxDAO {
	lease := defaultClaimLease
	if cfg != nil && cfg.Outbox.ClaimLeaseSeconds > 0 {
		lease = time.Duration(cfg.Outbox.ClaimLeaseSeconds) * time.Second
	}
	return &OutboxDAO{
		outboxCollection: db.Collection(CollectionOutbox),
		claimLease:       lease,
	}
}

func (d *OutboxDAO) Create(ctx context.Context, event *models.OutboxEvent) error {
	_, err := d.outboxCollection.InsertOne(ctx, event)
	if err != nil {
		zap.L().Error("mongodb/outbox@Create: InsertOne", zap.Error(err))
		return err
	}
	return nil
}

// ClaimDue uses a three-phase approach to efficiently and atomically claim a
// batch of due records. The conditional UpdateMany in phase 2 acts as an
// optimistic lock, so concurrent workers never fetch the same records.
//
// A record is due when it is PENDING, or when it is PROCESSING but its claim
// is older than the lease window. The second case covers a worker that
// crashed mid-batch: its claimed-but-unfinished rows become claimable again,
// which is what keeps every enqueued record eventually reaching SENT or
// FAILED.
func (d *OutboxDAO) ClaimDue(ctx context.Context, limit int, maxAttempts int) ([]*models.OutboxEvent, error) {
	now := time.Now()
	staleBefore := now.Add(-d.claimLease)

	dueFilter := bson.M{
		"attempts": bson.M{"$lt": maxAttempts},
		"$or": bson.A{
			bson.M{"status": models.OutboxStatusPending},
			bson.M{
				"status":     models.OutboxStatusProcessing,
				"updated_at": bson.M{"$lt": staleBefore},
			},
		},
	}

	// Phase 1: find candidate IDs only, oldest first for FIFO fairness.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := d.outboxCollection.Find(ctx, dueFilter, findOptions)
	if err != nil {
		zap.L().Error("mongodb/outbox@ClaimDue: Phase 1 Find failed", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		zap.L().Error("mongodb/outbox@ClaimDue: Phase 1 cursor decoding failed", zap.Error(err))
		return nil, err
	}

	if len(results) == 0 {
		return []*models.OutboxEvent{}, nil
	}

	ids := make([]primitive.ObjectID, len(results))
	for i, res := range results {
		ids[i] = res.ID
	}

	// Phase 2: atomically claim the candidates. The due filter is repeated so
	// a row claimed by another worker between phases is skipped, not stolen.
	claimID := primitive.NewObjectID()
	updateFilter := bson.M{
		"_id":      bson.M{"$in": ids},
		"attempts": bson.M{"$lt": maxAttempts},
		"$or": bson.A{
			bson.M{"status": models.OutboxStatusPending},
			bson.M{
				"status":     models.OutboxStatusProcessing,
				"updated_at": bson.M{"$lt": staleBefore},
			},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.OutboxStatusProcessing,
			"claim_id":   claimID,
			"updated_at": now,
		},
	}
	updateResult, err := d.outboxCollection.UpdateMany(ctx, updateFilter, update)
	if err != nil {
		zap.L().Error("mongodb/outbox@ClaimDue: Phase 2 UpdateMany failed", zap.Error(err))
		return nil, err
	}

	if updateResult.ModifiedCount == 0 {
		return []*models.OutboxEvent{}, nil
	}

	// Phase 3: fetch the full documents we actually claimed.
	fetchOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	claimedCursor, err := d.outboxCollection.Find(ctx, bson.M{"claim_id": claimID}, fetchOptions)
	if err != nil {
		zap.L().Error("mongodb/outbox@ClaimDue: Phase 3 Find failed", zap.Error(err))
		return nil, err
	}

	var claimed []*models.OutboxEvent
	if err = claimedCursor.All(ctx, &claimed); err != nil {
		zap.L().Error("mongodb/outbox@ClaimDue: Phase 3 cursor decoding failed", zap.Error(err))
		return nil, err
	}

	return claimed, nil
}

func (d *OutboxDAO) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":     models.OutboxStatusSent,
			"sent_at":    now,
			"updated_at": now,
		},
		"$unset": bson.M{
			"last_error": "",
			"claim_id":   "",
		},
	}
	res, err := d.outboxCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed increments the attempt counter and re-queues the record, or flips
// it to FAILED once the new attempt count reaches the ceiling. An aggregation
// pipeline update keeps the increment and the status decision in one atomic
// write, so a concurrent reader never sees an intermediate state.
func (d *OutboxDAO) MarkFailed(ctx context.Context, id primitive.ObjectID, errText string, maxAttempts int) error {
	now := time.Now()
	newAttempts := bson.M{"$add": bson.A{"$attempts", 1}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"attempts": newAttempts,
			"status": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{newAttempts, maxAttempts}},
				models.OutboxStatusFailed,
				models.OutboxStatusPending,
			}},
			"last_error":      errText,
			"last_attempt_at": now,
			"updated_at":      now,
		}}},
		{{Key: "$unset", Value: "claim_id"}},
	}
	res, err := d.outboxCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *OutboxDAO) CountsByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := d.outboxCollection.Aggregate(ctx, pipeline)
	if err != nil {
		zap.L().Error("mongodb/outbox@CountsByStatus: Aggregate failed", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (d *OutboxDAO) Recent(ctx context.Context, status string, limit int64) ([]*models.OutboxEvent, error) {
	switch status {
	case models.OutboxStatusPending, models.OutboxStatusProcessing,
		models.OutboxStatusSent, models.OutboxStatusFailed:
	default:
		return nil, ErrInvalidStatus
	}

	if limit <= 0 || limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := d.outboxCollection.Find(ctx, bson.M{"status": status}, findOptions)
	if err != nil {
		zap.L().Error("mongodb/outbox@Recent: Find failed", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []*models.OutboxEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
