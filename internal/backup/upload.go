package backup

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

// SnapshotPrefix is the object key prefix snapshots are stored under.
const SnapshotPrefix = "snapshots/"

// Uploader is an object store for snapshots. storage.MinIOStorage implements it.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// SnapshotKey names the object for a snapshot taken at t. Keys sort by time.
func SnapshotKey(t time.Time) string {
	return SnapshotPrefix + t.UTC().Format("20060102T150405.000Z") + ".json"
}

// Push exports s and uploads the snapshot. It returns the object key.
func Push(ctx context.Context, s kv.Store, up Uploader) (string, error) {
	data, err := Export(ctx, s)
	if err != nil {
		return "", err
	}
	key := SnapshotKey(time.Now())
	if err := up.Upload(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return key, nil
}

// Pull downloads a snapshot and imports it. An empty key picks the latest.
func Pull(ctx context.Context, s kv.Store, up Uploader, key string, opts Options) (Result, error) {
	if key == "" {
		keys, err := up.List(ctx, SnapshotPrefix)
		if err != nil {
			return Result{}, fmt.Errorf("list snapshots: %w", err)
		}
		for _, k := range keys {
			if strings.HasSuffix(k, ".json") && k > key {
				key = k
			}
		}
		if key == "" {
			return Result{}, fmt.Errorf("no snapshots under %s", SnapshotPrefix)
		}
	} else if path.Dir(key) == "." {
		key = SnapshotPrefix + key
	}
	data, err := up.Download(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("download snapshot: %w", err)
	}
	return Import(ctx, s, data, opts)
}
