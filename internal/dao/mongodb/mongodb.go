package mongodb

import (
	"context"
	"fmt"
	"time"

	"peerpay_settlement/internal/conf"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDB connects to MongoDB and returns the client with its cleanup
// function. The connection is verified with a ping before use.
func NewMongoDB(cfg *conf.MongodbConfig) (*mongo.Client, func(), error) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.User, cfg.Password, cfg.Host, cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(cfg.DB)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	cleanup := func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
	}

	return client, cleanup, nil
}

// ensureIndexes creates the indexes backing the claim scan, the claimed-batch
// fetch and the diagnostic listings. Index creation is idempotent.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	outboxIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}, {Key: "attempts", Value: 1}}},
		{Keys: bson.D{{Key: "claim_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
	if _, err := db.Collection(CollectionOutbox).Indexes().CreateMany(ctx, outboxIndexes); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}

	heartbeatIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "worker", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(CollectionWorkerHeartbeats).Indexes().CreateOne(ctx, heartbeatIndex); err != nil {
		return fmt.Errorf("failed to create heartbeat index: %w", err)
	}
	return nil
}
