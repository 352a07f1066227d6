package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
	"github.com/jimdaga/first-step/internal/catalog"
	"github.com/jimdaga/first-step/internal/config"
	"github.com/jimdaga/first-step/internal/crypto"
	"github.com/jimdaga/first-step/internal/database"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"github.com/jimdaga/first-step/internal/server"
	"github.com/jimdaga/first-step/internal/streams"
	"github.com/jimdaga/first-step/internal/webhook"
	"github.com/jimdaga/first-step/internal/worker"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	db, err := database.Init(cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		return err
	}

	if err := initEncryption(cfg); err != nil {
		return err
	}

	webhookClient := webhook.NewClient(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookStub)

	if cfg.Mode == config.ModeWorker {
		return runWorker(cfg, db, webhookClient)
	}

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if err := catalog.Sync(db, cat); err != nil {
		return err
	}

	if cfg.SeedDevData && !cfg.IsProduction() {
		if err := database.SeedDevData(context.Background(), db); err != nil {
			slog.Error("Failed to seed dev data", "error", err)
		}
	}

	var (
		events      onboarding.EventPublisher
		submissions onboarding.SubmissionEnqueuer
		cache       catalog.Cache
	)

	if cfg.RedisURL != "" {
		publisher, err := streams.NewPublisher(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher

		taskClient, err := worker.NewTaskClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer taskClient.Close()
		submissions = taskClient

		redisCache, err := catalog.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		if err := redisCache.Invalidate(context.Background()); err != nil {
			slog.Warn("Failed to invalidate catalog cache", "error", err)
		}
		cache = redisCache
	} else {
		slog.Warn("REDIS_URL not set: step events disabled, profile submissions stay pending")
	}

	if cfg.RedisURL != "" && cfg.RunsWorker() {
		stop, err := startBackground(cfg, db, webhookClient)
		if err != nil {
			return err
		}
		defer stop()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := server.NewHandler(server.Deps{
		Config:        cfg,
		DB:            db,
		Auth:          auth.NewService(db),
		Onboarding:    onboarding.NewService(db, events, submissions),
		Catalog:       catalog.NewService(db, cache, cfg.CacheTTL),
		GoogleEnabled: auth.InitProviders(cfg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// runWorker runs the task worker in the foreground alongside the scheduler
// and step history consumer.
func runWorker(cfg *config.Config, db *gorm.DB, webhookClient *webhook.Client) error {
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is required in worker mode")
	}

	stopScheduler, err := worker.StartScheduler(cfg)
	if err != nil {
		return err
	}
	defer stopScheduler()

	stopConsumer, err := streams.StartStepConsumer(cfg.RedisURL, db)
	if err != nil {
		return err
	}
	defer stopConsumer()

	return worker.Run(cfg, db, webhookClient)
}

// startBackground starts the embedded worker, scheduler and step consumer
// and returns one function stopping all of them.
func startBackground(cfg *config.Config, db *gorm.DB, webhookClient *webhook.Client) (func(), error) {
	var stops []func()
	stopAll := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	starters := []func() (func(), error){
		func() (func(), error) { return worker.Start(cfg, db, webhookClient) },
		func() (func(), error) { return worker.StartScheduler(cfg) },
		func() (func(), error) { return streams.StartStepConsumer(cfg.RedisURL, db) },
	}
	for _, start := range starters {
		stop, err := start()
		if err != nil {
			stopAll()
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stopAll, nil
}

// initEncryption installs the OAuth token encryptor. Development runs
// without ENCRYPTION_KEY get a throwaway key.
func initEncryption(cfg *config.Config) error {
	key := cfg.EncryptionKey
	if key == "" {
		if cfg.IsProduction() {
			return errors.New("ENCRYPTION_KEY is required in production")
		}
		generated, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		slog.Warn("ENCRYPTION_KEY not set, using an ephemeral key; stored OAuth tokens will not survive a restart")
		key = generated
	}
	return models.InitEncryption(key)
}
