package utils

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestMongoURI returns the MongoDB URI used by integration tests.
// MONGO_URI_TEST overrides the local default.
func TestMongoURI() string {
	if uri := os.Getenv("MONGO_URI_TEST"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// SetupTestDB creates a test MongoDB database connection and returns the
// database instance, dropping the named collections for a clean state.
func SetupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(TestMongoURI()))
	require.NoError(t, err, "Failed to connect to MongoDB")
	db := client.Database(dbName)

	for _, collection := range collections {
		_ = db.Collection(collection).Drop(context.Background())
	}

	return db
}
