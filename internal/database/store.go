package database

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/Dias221467/Beer_Rating/internal/config"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/Dias221467/Beer_Rating/internal/store/badgerstore"
	"github.com/Dias221467/Beer_Rating/internal/store/firebasestore"
	"github.com/Dias221467/Beer_Rating/internal/store/memory"
	"github.com/Dias221467/Beer_Rating/internal/store/mongostore"
	"github.com/Dias221467/Beer_Rating/internal/store/pgstore"
	"github.com/Dias221467/Beer_Rating/internal/store/redisstore"
	log "github.com/sirupsen/logrus"
)

// Store is an open record store together with the connection beneath it.
type Store struct {
	*store.Client
	release func() error
}

// Close closes the store and then its connection.
func (s *Store) Close() error {
	err := s.Client.Close()
	if s.release != nil {
		err = errors.Join(err, s.release())
	}
	return err
}

// OpenStore opens the backend selected by cfg.StoreDriver. app is only used
// by the firebase driver and may be nil otherwise.
func OpenStore(ctx context.Context, cfg *config.Config, app *firebase.App) (*Store, error) {
	backend, release, err := openBackend(ctx, cfg, app)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.StoreDriver).Info("Record store opened")
	return &Store{Client: store.New(backend), release: release}, nil
}

func openBackend(ctx context.Context, cfg *config.Config, app *firebase.App) (store.Backend, func() error, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("Using the in-memory store, data is lost on restart")
		return memory.New(), nil, nil

	case "badger":
		b, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.Badger.Path,
			SyncWrites: cfg.Badger.SyncWrites,
			Logger:     log.StandardLogger(),
		})
		return b, nil, err

	case "mongo":
		client, err := ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		b, err := mongostore.New(ctx, client.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
		release := func() error { return client.Disconnect(context.Background()) }
		if err != nil {
			_ = release()
			return nil, nil, err
		}
		return b, release, nil

	case "redis":
		rdb, err := ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		b, err := redisstore.New(ctx, rdb, cfg.Redis.Namespace)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return b, rdb.Close, nil

	case "postgres":
		pool, err := ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		b, err := pgstore.New(ctx, pool, cfg.Postgres.Table)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return b, func() error { pool.Close(); return nil }, nil

	case "firebase":
		if app == nil {
			return nil, nil, errors.New("firebase driver needs a Firebase app")
		}
		client, err := app.Database(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open Firebase database: %w", err)
		}
		return firebasestore.New(client, cfg.Firebase.PollInterval), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
