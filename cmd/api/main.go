package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fathima-sithara/music-share/internal/config"
	"github.com/fathima-sithara/music-share/internal/events"
	"github.com/fathima-sithara/music-share/internal/handlers"
	"github.com/fathima-sithara/music-share/internal/middleware"
	"github.com/fathima-sithara/music-share/internal/repository"
	"github.com/fathima-sithara/music-share/internal/server"
	service "github.com/fathima-sithara/music-share/internal/services"
	"github.com/fathima-sithara/music-share/internal/storage"
	utils "github.com/fathima-sithara/music-share/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfgPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")
	flag.Parse()

	// load config
	cfg, err := config.Load(*cfgPath, config.API)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// logger
	logger, err := utils.NewLogger(cfg.Development(), cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	mc, err := repository.NewMongoClient(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	repo := repository.NewFileRepository(mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warnw("ensure indexes", "err", err)
	}

	// blob storage
	store, err := storage.New(ctx, cfg.Storage, cfg.PresignTTL)
	if err != nil {
		logger.Fatalf("storage init: %v", err)
	}
	if be, ok := store.(storage.BucketEnsurer); ok {
		if err := be.EnsureBucket(ctx); err != nil {
			logger.Fatalf("ensure bucket %s: %v", cfg.Storage.Bucket, err)
		}
	}

	// upload events
	pub, err := events.New(cfg.Events)
	if err != nil {
		logger.Fatalf("events init: %v", err)
	}

	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	// rate limiter, only with Redis
	var (
		rdb     *redis.Client
		limiter *middleware.RateLimiter
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnw("redis unreachable, uploads are not rate limited until it recovers", "addr", cfg.Redis.Addr, "err", err)
		}
		limiter = middleware.NewRateLimiter(rdb, "music-share:upload", cfg.Redis.UploadLimit, cfg.RateWindow, logger)
	}

	svc := service.NewFileService(repo, store, pub, service.Options{
		Folder:         cfg.Storage.Folder,
		AllowedFormats: cfg.Storage.AllowedFormats,
	}, logger)
	h := handlers.NewHandler(svc, logger, metrics)
	app := server.New(h, server.Options{
		BodyLimit: cfg.MaxUploadBytes(),
		Metrics:   metrics,
		Limiter:   limiter,
		AccessLog: cfg.Development(),
	})

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infow("starting music-share api", "addr", addr, "storage", cfg.Storage.Driver, "events", cfg.Events.Driver)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	if err := app.ShutdownWithContext(timeoutCtx); err != nil {
		logger.Warnw("http shutdown", "err", err)
	}
	if err := pub.Close(); err != nil {
		logger.Warnw("close publisher", "err", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = mc.Disconnect(timeoutCtx)
	logger.Info("shutdown completed")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
