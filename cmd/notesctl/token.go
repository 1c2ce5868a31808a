package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/database"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/tokens"
)

func newTokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || ttl == 0 {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				if secret == "" {
					secret = cfg.Auth.Secret
				}
				if ttl == 0 {
					ttl = cfg.Auth.TokenTTL
				}
			}
			if secret == "" {
				return fmt.Errorf("no signing secret (set AUTH_SECRET or --secret)")
			}
			tok, err := tokens.GenerateAccessToken(secret, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to AUTH_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	return cmd
}

// Replaced in tests.
var connectRedis = func(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return database.ConnectRedis(ctx, cfg.Redis)
}

func newRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Block an API access token until it expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("no signing secret (set AUTH_SECRET)")
			}
			rdb, err := connectRedis(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("revocation needs redis: %w", err)
			}
			defer rdb.Close()

			ver := tokens.NewVerifier(cfg.Auth.Secret).WithRevocations(tokens.NewRevocations(rdb))
			if err := ver.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "revoked")
			return nil
		},
	}
}
