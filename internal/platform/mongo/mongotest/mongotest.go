// Package mongotest provides a disposable MongoDB database for integration tests.
package mongotest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	platformmongo "attendance_backend/internal/platform/mongo"
)

// Database connects to MONGO_TEST_URI and returns a throwaway database that
// is dropped when the test ends. The test is skipped when the variable is unset.
func Database(t testing.TB) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	name := fmt.Sprintf("attendance_test_%d", time.Now().UnixNano())
	client, db, err := platformmongo.Connect(context.Background(), uri, name)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

// Unconnected returns a database handle pointing at an address with no server.
// Adapters can be constructed against it for tests that do no I/O.
func Unconnected(t testing.TB) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("attendance_unconnected")
}
