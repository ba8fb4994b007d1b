package mongodb

import (
	"context"
	"errors"
	"time"

	"peerpay_settlement/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type HeartbeatDAO struct {
	heartbeatCollection *mongo.Collection
}

func NewHeartbeatDAO(db *mongo.Database) *HeartbeatDAO {
	return &HeartbeatDAO{
		heartbeatCollection: db.Collection(CollectionWorkerHeartbeats),
	}
}

// Upsert writes the liveness record for a worker, keyed by worker name.
func (d *HeartbeatDAO) Upsert(ctx context.Context, hb *models.WorkerHeartbeat) error {
	hb.UpdatedAt = time.Now()
	filter := bson.M{"worker": hb.Worker}
	update := bson.M{"$set": hb}
	_, err := d.heartbeatCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		zap.L().Error("mongodb/heartbeat@Upsert: UpdateOne", zap.Error(err))
		return err
	}
	return nil
}

func (d *HeartbeatDAO) Get(ctx context.Context, worker string) (*models.WorkerHeartbeat, error) {
	var hb models.WorkerHeartbeat
	err := d.heartbeatCollection.FindOne(ctx, bson.M{"worker": worker}).Decode(&hb)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &hb, nil
}

func (d *HeartbeatDAO) All(ctx context.Context) ([]*models.WorkerHeartbeat, error) {
	cursor, err := d.heartbeatCollection.Find(ctx, bson.M{})
	if err != nil {
		zap.L().Error("mongodb/heartbeat@All: Find", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	heartbeats := []*models.WorkerHeartbeat{}
	if err := cursor.All(ctx, &heartbeats); err != nil {
		return nil, err
	}
	return heartbeats, nil
}
