package database

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

func roundTrip(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()
	rev, err := s.Put(ctx, &kv.Record{Key: "k", Body: []byte(`{}`)})
	require.NoError(t, err)
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, rev, got.Rev)
}

func TestOpenStoreMemoryAndSQLite(t *testing.T) {
	ctx := context.Background()

	s, err := OpenStore(ctx, &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}})
	require.NoError(t, err)
	roundTrip(t, s)
	require.NoError(t, s.Close())

	path := filepath.Join(t.TempDir(), "notes.db")
	s, err = OpenStore(ctx, &config.Config{Store: config.StoreConfig{Backend: config.BackendSQLite, SQLitePath: path}})
	require.NoError(t, err)
	roundTrip(t, s)
	require.NoError(t, s.Close())

	// reopening sees the persisted record
	s, err = OpenStore(ctx, &config.Config{Store: config.StoreConfig{Backend: config.BackendSQLite, SQLitePath: path}})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(ctx, "k")
	require.NoError(t, err)
}

func TestOpenStoreRedis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	host, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)

	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendRedis, Prefix: "t:"},
		Redis: config.RedisConfig{Host: host, Port: port},
	}
	s, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
	require.True(t, m.Exists("t:rec:k"))
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "etcd"}})
	require.Error(t, err)
}

func TestConnectRedisRequiresHost(t *testing.T) {
	_, err := ConnectRedis(context.Background(), config.RedisConfig{})
	require.Error(t, err)
}

func TestConnectMongoRejectsBadURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "notmongo://localhost", time.Second)
	require.ErrorContains(t, err, "mongo connect")
}

func TestConnectMongoRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	_, err := connectMongoRetry(ctx, "notmongo://localhost", time.Second, 5)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}
