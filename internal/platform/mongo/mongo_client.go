// Package mongo connects to MongoDB and provides helpers shared by the
// document-store adapters.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// CountersCollection holds one document per sequence: {_id: name, seq: n}.
const CountersCollection = "counters"

// Connect opens a client for uri, verifies it with a ping and returns the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		slog.Error("MongoDB connection failed", "database", database, "error", err)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	slog.Info("MongoDB connection successful", "database", database)
	return client, client.Database(database), nil
}

// NextSequence atomically increments and returns the counter called name.
// Documents keep numeric ids this way so that both stores expose the same id space.
func NextSequence(ctx context.Context, db *mongo.Database, name string) (uint, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(CountersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return uint(out.Seq), nil
}
