// @title           Strategy Studio API
// @version         1.0
// @description     Tier-gated strategy workspace and code synthesis.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aitrader/strategy-studio/internal/api"
	"github.com/aitrader/strategy-studio/internal/api/metrics"
	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/ports"
	"github.com/aitrader/strategy-studio/internal/core/service"
	"github.com/aitrader/strategy-studio/internal/infrastructure/config"
	mongodb "github.com/aitrader/strategy-studio/internal/infrastructure/db/mongo"
	redisdb "github.com/aitrader/strategy-studio/internal/infrastructure/db/redis"
	"github.com/aitrader/strategy-studio/internal/infrastructure/display"
	"github.com/aitrader/strategy-studio/internal/infrastructure/notify"
	"github.com/aitrader/strategy-studio/internal/infrastructure/queue"
	"github.com/aitrader/strategy-studio/internal/infrastructure/session"
	"github.com/aitrader/strategy-studio/internal/synth"
	"github.com/aitrader/strategy-studio/pkg/logger"
)

const devSecret = "dev-secret-change-me"

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "strategy-studio",
		Env:     cfg.Env,
	})

	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
		secret = devSecret
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	accounts := mongodb.NewAccountRepository(db)
	strategies := mongodb.NewStrategyRepository(db)
	if err := mongodb.EnsureIndexes(ctx, accounts, strategies); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	durable := redisdb.NewSessionStore(rdb, cfg.Session.TokenTTL)
	ephemeral := session.NewMemoryStore(cfg.Session.GuestTTL)
	clipboard := redisdb.NewClipboard(rdb, cfg.Session.ClipboardTTL)

	// --- Core ---
	sessions := service.NewSessionService(
		accounts, durable, ephemeral,
		secret, cfg.Session.TokenTTL,
		logger.Component("session"),
	)

	synthesizer := synth.New()
	latest := display.NewLatest()
	regen := queue.NewRegenerator(
		cfg.Regen.Workers,
		synthesizer,
		func(ctx context.Context, sessionID string) domain.AccessTier {
			return sessions.Current(ctx, sessionID).Tier
		},
		latest,
		logger.Component("regenerator"),
	)
	regen.Start(ctx)

	workspaceLog := logger.Component("workspace")
	registry := service.NewWorkspaceRegistry(sessions, service.WorkspaceDeps{
		Synth:       synthesizer,
		Strategies:  strategies,
		Exporter:    clipboard,
		Regenerator: regen,
		NewBoard: func() ports.MessageBoard {
			return notify.NewMessageLog(cfg.Regen.MessageCapacity, workspaceLog)
		},
		Log: workspaceLog,
	})

	sessions.OnTransition(func(_ context.Context, from, to *domain.Session, ev domain.TierEvent) {
		metrics.TierTransitionsTotal.WithLabelValues(string(ev), string(from.Tier), string(to.Tier)).Inc()
	})
	sessions.OnTransition(func(_ context.Context, _, to *domain.Session, ev domain.TierEvent) {
		if ev == domain.EventUpgrade {
			return
		}
		regen.Forget(to.ID)
		latest.Forget(to.ID)
	})
	sessions.OnTransition(registry.HandleTransition)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Sessions:   sessions,
		Workspaces: registry,
		Latest:     latest,
		Clipboard:  clipboard,
		Mongo:      db,
		Redis:      rdb,
		Log:        logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdown(srv, log)
}

func shutdown(srv *http.Server, log zerolog.Logger) {
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server exited properly")
}
