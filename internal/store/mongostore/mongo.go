// Package mongostore is a store backend on MongoDB.
//
// Each leaf is one document whose _id is the leaf path. Mutations run in a
// multi-document transaction and a change stream on the collection feeds
// watchers, so the deployment must be a replica set (a single-node replica
// set is enough).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultCollection is the collection holding the records.
const DefaultCollection = "records"

type record struct {
	Path  string `bson:"_id"`
	Value string `bson:"v"`
}

type changeEvent struct {
	DocumentKey struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// Backend implements store.Backend on a MongoDB collection.
type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection

	hub    *store.Hub
	stream *mongo.ChangeStream
	cancel context.CancelFunc
	done   chan struct{}
}

// New uses db.Collection(collection) for storage and opens its change
// stream. The caller owns the database connection.
func New(ctx context.Context, db *mongo.Database, collection string) (*Backend, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	coll := db.Collection(collection)

	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("open change stream on %s: %w", collection, err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	b := &Backend{
		client:     db.Client(),
		collection: coll,
		hub:        store.NewHub(),
		stream:     stream,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go b.listen(listenCtx)
	return b, nil
}

func (b *Backend) listen(ctx context.Context) {
	defer close(b.done)
	for b.stream.Next(ctx) {
		var ev changeEvent
		if err := b.stream.Decode(&ev); err != nil {
			logrus.WithError(err).Warn("Failed to decode change event")
			continue
		}
		if ev.DocumentKey.ID != "" {
			b.hub.Notify(ev.DocumentKey.ID)
		}
	}
	if err := b.stream.Err(); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Error("Change stream stopped")
	}
}

// filterUnder matches the leaf at prefix and every leaf below it. The
// anchored regex can use the _id index.
func filterUnder(prefix string) bson.M {
	if prefix == "" {
		return bson.M{}
	}
	return bson.M{"$or": bson.A{
		bson.M{"_id": prefix},
		bson.M{"_id": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix+"/")}},
	}}
}

// Scan implements store.Backend.
func (b *Backend) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	cursor, err := b.collection.Find(ctx, filterUnder(prefix))
	if err != nil {
		return nil, fmt.Errorf("find records under %q: %v", prefix, err)
	}
	defer cursor.Close(ctx)

	var records []record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %v", err)
	}

	out := make(map[string][]byte, len(records))
	for _, r := range records {
		out[r.Path] = []byte(r.Value)
	}
	return out, nil
}

// Apply implements store.Backend.
func (b *Backend) Apply(ctx context.Context, m store.Mutation) error {
	sess, err := b.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %v", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, c := range m.Clear {
			if _, err := b.collection.DeleteMany(sc, filterUnder(c)); err != nil {
				return nil, fmt.Errorf("delete under %s: %w", c, err)
			}
		}
		if len(m.Put) == 0 {
			return nil, nil
		}
		models := make([]mongo.WriteModel, 0, len(m.Put))
		for k, v := range m.Put {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": k}).
				SetReplacement(record{Path: k, Value: string(v)}).
				SetUpsert(true))
		}
		if _, err := b.collection.BulkWrite(sc, models); err != nil {
			return nil, fmt.Errorf("write records: %w", err)
		}
		return nil, nil
	})
	return err
}

// Watch implements store.Backend.
func (b *Backend) Watch(ctx context.Context, prefix string) (<-chan string, error) {
	return b.hub.Watch(ctx, prefix)
}

// Close stops the change stream.
func (b *Backend) Close() error {
	b.cancel()
	err := b.stream.Close(context.Background())
	<-b.done
	b.hub.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
