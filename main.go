package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/manuscriptos/manuscript/backend/go-services/handlers"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/database"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/explorer"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/oidc"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/store"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/tokens"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/logger"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/metrics"
	"github.com/manuscriptos/manuscript/backend/go-services/pkg/middleware"
)

// apiVerifier combines the configured token sources: self-issued HS256
// tokens, an OIDC provider, and the insecure decoder for integration runs.
// It returns nil when none is configured.
func apiVerifier(ctx context.Context, cfg *config.Config, rdb *redis.Client) (middleware.Verifier, error) {
	var vs []middleware.Verifier
	if cfg.Auth.Secret != "" {
		ver := tokens.NewVerifier(cfg.Auth.Secret)
		if rdb != nil {
			ver.WithRevocations(tokens.NewRevocations(rdb))
		}
		vs = append(vs, ver)
	}
	if cfg.OIDC.Enabled() {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			return nil, err
		}
		vs = append(vs, ver)
	}
	if cfg.OIDC.AllowInsecure {
		logger.Warnf("OIDC_ALLOW_INSECURE: accepting unsigned tokens")
		vs = append(vs, oidc.NewInsecureVerifier())
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return middleware.AnyVerifier(vs...), nil
}

func main() {
	// LOG_LEVEL is read again from config below; this covers config errors.
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: backend=%s redis=%v minio=%v auth=%v", cfg.Store.Backend, cfg.Redis.Host != "", cfg.MinIO.Enabled(), cfg.Auth.Secret != "" || cfg.OIDC.Enabled())

	ctx := context.Background()
	kvs, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer func() {
		if err := kvs.Close(); err != nil {
			logger.Warnf("closing store: %v", err)
		}
	}()

	docs, lists := store.NewDocumentStore(kvs), store.NewListStore(kvs)
	exp := explorer.New(lists, docs)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Lightweight CORS for the browser client.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	// Redis is optional; it backs the shared rate limiter and token revocation.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warnf("redis unavailable, continuing without it: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	handlers.RegisterHealth(r, kvs, cfg.Store.Backend)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	ver, err := apiVerifier(ctx, cfg, rdb)
	if err != nil {
		logger.Fatalf("auth setup failed: %v", err)
	}
	if ver != nil {
		api.Use(middleware.AuthMiddleware(ver))
	} else {
		logger.Warnf("neither AUTH_SECRET nor OIDC_ISSUER set: /api is unauthenticated")
	}
	// After auth so buckets are per subject when a token is present.
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.NewAPI(docs, lists, exp).Register(api)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("notes service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
