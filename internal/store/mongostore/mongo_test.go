package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/Dias221467/Beer_Rating/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestFilterUnder(t *testing.T) {
	assert.Equal(t, bson.M{}, filterUnder(""))

	f := filterUnder("users/a.b")
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"_id": "users/a.b"}, or[0])
	assert.Equal(t, bson.M{"_id": primitive.Regex{Pattern: `^users/a\.b/`}}, or[1])
}

// TestBackend runs against a real replica set named by MONGO_TEST_URI.
func TestBackend(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	db := client.Database("beer_rating_test")
	storetest.Run(t, func(t *testing.T) store.Backend {
		name := "records_" + uuid.NewString()
		t.Cleanup(func() { db.Collection(name).Drop(context.Background()) })
		b, err := New(context.Background(), db, name)
		require.NoError(t, err)
		return b
	})
}
