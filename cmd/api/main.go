package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/paylynx/policy-engine/internal/api"
	"github.com/paylynx/policy-engine/internal/audit"
	"github.com/paylynx/policy-engine/internal/auth"
	"github.com/paylynx/policy-engine/internal/clock"
	"github.com/paylynx/policy-engine/internal/config"
	"github.com/paylynx/policy-engine/internal/database"
	"github.com/paylynx/policy-engine/internal/ledger"
	mw "github.com/paylynx/policy-engine/internal/middleware"
	inats "github.com/paylynx/policy-engine/internal/nats"
	"github.com/paylynx/policy-engine/internal/policy"
	iredis "github.com/paylynx/policy-engine/internal/redis"
	"github.com/paylynx/policy-engine/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.DB.MigrationsPath != "" {
		if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional — audit events are best effort)
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	} else {
		slog.Warn("NATS not configured, audit events disabled")
	}

	// Policy engine
	store := policy.NewPostgresStore(pool)
	spendLedger := ledger.NewPostgresLedger(pool)
	cache := policy.NewCache(redisClient, cfg.Policy.CacheTTL)
	policySvc := policy.NewService(store, spendLedger, cache, publisher)

	// Audit trail
	auditRepo := audit.NewRepository(pool)
	if natsClient != nil {
		consumer := audit.NewConsumer(auditRepo, inats.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Stale spend record cleanup
	janitor := ledger.NewJanitor(spendLedger, cfg.Policy.LedgerRetentionDays, cfg.Policy.JanitorInterval)
	go janitor.Run(ctx)

	// HTTP surface
	policyHandler := policy.NewHandler(policySvc, auditRepo, clock.System{})
	jwtManager := auth.NewJWTManager(cfg.JWT.AccessSecret, 15*time.Minute)
	checkLimiter := mw.NewRateLimiter(redisClient, cfg.RateLimit.CheckMaxPerMinute, 60)

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		CheckRateLimiter:   checkLimiter.Middleware,
	}, api.HandlerSet{
		CheckPayment:   policyHandler.CheckPayment,
		GetSettings:    policyHandler.GetSettings,
		UpdateSettings: policyHandler.UpdateSettings,
		GetLimits:      policyHandler.GetLimits,
		ListAudit:      policyHandler.ListAudit,
		PolicyInfo:     policyHandler.PolicyInfo,

		AuthMiddleware: auth.Middleware(jwtManager),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
