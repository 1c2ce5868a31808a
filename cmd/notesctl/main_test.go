package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/backup"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/models"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/store"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/tokens"
)

// useStore points the commands at s for the duration of the test.
func useStore(t *testing.T, s kv.Store) {
	t.Helper()
	prev := openStore
	openStore = func(context.Context) (kv.Store, error) { return s, nil }
	t.Cleanup(func() { openStore = prev })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, s kv.Store) (*models.List, *models.Document) {
	t.Helper()
	ctx := context.Background()
	f := models.NewList(models.ListCustom, "Drafts")
	f, err := store.NewListStore(s).Create(ctx, f)
	require.NoError(t, err)
	d := models.NewDocument("Letter", "dear")
	d.SetParentID(f.ID())
	d, err = store.NewDocumentStore(s).Create(ctx, d)
	require.NoError(t, err)
	return f, d
}

func TestBackupRestoreFile(t *testing.T) {
	src := kv.NewMemoryStore()
	seed(t, src)
	useStore(t, src)

	file := filepath.Join(t.TempDir(), "snap.json")
	_, err := run(t, "backup", "-o", file)
	require.NoError(t, err)

	dst := kv.NewMemoryStore()
	useStore(t, dst)
	out, err := run(t, "restore", file)
	require.NoError(t, err)
	assert.Contains(t, out, "restored 2 records")

	// a second restore collides with what is there
	_, err = run(t, "restore", file)
	require.Error(t, err)
	out, err = run(t, "restore", file, "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "2 replaced")
}

func TestBackupToStdout(t *testing.T) {
	s := kv.NewMemoryStore()
	seed(t, s)
	useStore(t, s)

	out, err := run(t, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, `"version":1`)
	assert.Contains(t, out, `"key":"list:`)
}

func TestRestoreNeedsSource(t *testing.T) {
	useStore(t, kv.NewMemoryStore())
	_, err := run(t, "restore")
	require.ErrorContains(t, err, "--from-bucket")
}

func TestInfoAndPurge(t *testing.T) {
	s := kv.NewMemoryStore()
	seed(t, s)
	useStore(t, s)

	out, err := run(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "documents: 1")
	assert.Contains(t, out, "lists:     1")

	_, err = run(t, "purge")
	require.ErrorContains(t, err, "--yes")

	out, err = run(t, "purge", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 2 records")

	st, err := backup.Info(context.Background(), s)
	require.NoError(t, err)
	assert.Zero(t, st.Records)
}

func TestTree(t *testing.T) {
	s := kv.NewMemoryStore()
	f, d := seed(t, s)
	useStore(t, s)

	out, err := run(t, "tree")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "+ Drafts ("+f.ID()+")", lines[0])
	assert.Equal(t, "  - Letter ("+d.ID()+")", lines[1])
}

func TestTokenUsesConfiguredSecret(t *testing.T) {
	prev := loadConfig
	loadConfig = func() (*config.Config, error) {
		return &config.Config{Auth: config.AuthConfig{Secret: "s3cret", TokenTTL: time.Hour}}, nil
	}
	t.Cleanup(func() { loadConfig = prev })

	out, err := run(t, "token", "alice")
	require.NoError(t, err)
	tok, err := tokens.NewVerifier("s3cret").Verify(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	var claims struct {
		Sub string `json:"sub"`
	}
	require.NoError(t, tok.Claims(&claims))
	assert.Equal(t, "alice", claims.Sub)
}

func TestTokenWithoutSecret(t *testing.T) {
	prev := loadConfig
	loadConfig = func() (*config.Config, error) { return &config.Config{}, nil }
	t.Cleanup(func() { loadConfig = prev })

	_, err := run(t, "token", "alice", "--ttl", "1m")
	require.ErrorContains(t, err, "no signing secret")
}

func TestBackupWriteFailure(t *testing.T) {
	useStore(t, kv.NewMemoryStore())
	_, err := run(t, "backup", "-o", filepath.Join(t.TempDir(), "missing", "snap.json"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err) || strings.Contains(err.Error(), "no such file"))
}

func TestRevoke(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	const secret = "s3cret"
	prevCfg, prevRedis := loadConfig, connectRedis
	loadConfig = func() (*config.Config, error) {
		return &config.Config{Auth: config.AuthConfig{Secret: secret, TokenTTL: time.Hour}}, nil
	}
	connectRedis = func(context.Context, *config.Config) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{Addr: m.Addr()}), nil
	}
	t.Cleanup(func() { loadConfig, connectRedis = prevCfg, prevRedis })

	tok, err := tokens.GenerateAccessToken(secret, "bob", time.Hour)
	require.NoError(t, err)

	out, err := run(t, "revoke", tok)
	require.NoError(t, err)
	assert.Equal(t, "revoked\n", out)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()
	_, err = tokens.NewVerifier(secret).WithRevocations(tokens.NewRevocations(client)).Verify(context.Background(), tok)
	require.ErrorIs(t, err, tokens.ErrRevoked)

	_, err = run(t, "revoke", "garbage")
	require.Error(t, err)
}
