// Command notesctl is the operator CLI for the notes store: snapshots,
// restores, inspection and access tokens.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/backup"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/database"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/storage"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
)

// Replaced in tests.
var (
	loadConfig   = config.LoadConfig
	openStore    = openConfiguredStore
	openUploader = openConfiguredUploader
)

func openConfiguredStore(ctx context.Context) (kv.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.OpenStore(ctx, cfg)
}

func openConfiguredUploader(ctx context.Context) (backup.Uploader, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.MinIO.Enabled() {
		return nil, fmt.Errorf("object storage not configured (set MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY)")
	}
	return storage.NewMinIOStorage(ctx, &cfg.MinIO)
}

// withStore opens the configured store for one command and closes it after.
func withStore(ctx context.Context, fn func(kv.Store) error) error {
	s, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warnf("closing store: %v", err)
		}
	}()
	return fn(s)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notesctl",
		Short:         "Operate the notes store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newBackupCmd(),
		newRestoreCmd(),
		newInfoCmd(),
		newPurgeCmd(),
		newTreeCmd(),
		newTokenCmd(),
		newRevokeCmd(),
	)
	return root
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
