package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
)

// OpenStore builds the backing store selected by cfg.Store.Backend, wrapped
// with metrics. Closing the returned store releases its connection.
func OpenStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	var (
		s   kv.Store
		err error
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		s = kv.NewMemoryStore()
	case config.BackendSQLite:
		s, err = kv.OpenSQLite(cfg.Store.SQLitePath)
	case config.BackendRedis:
		var client *redis.Client
		client, err = ConnectRedis(ctx, cfg.Redis)
		if err == nil {
			s = kv.NewRedisStore(client, cfg.Store.Prefix)
		}
	case config.BackendMongo:
		var client *mongo.Client
		client, err = connectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err == nil {
			col := client.Database(cfg.MongoDB.Database).Collection(cfg.Store.Collection)
			s = &mongoStore{MongoStore: kv.NewMongoStore(col), client: client}
		}
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Infof("backing store: %s", cfg.Store.Backend)
	return kv.Instrument(s, cfg.Store.Backend), nil
}

// mongoStore disconnects the client it owns on Close.
type mongoStore struct {
	*kv.MongoStore
	client *mongo.Client
}

func (m *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// ConnectMongo connects to uri and pings the primary within timeout. Callers
// disconnect the returned client.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// connectMongoRetry retries with exponential backoff to tolerate startup
// races with the database container.
func connectMongoRetry(ctx context.Context, uri string, timeout time.Duration, maxAttempts int) (*mongo.Client, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := ConnectMongo(ctx, uri, timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}
