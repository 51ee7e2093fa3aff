package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fathima-sithara/music-share/internal/apiclient"
	"github.com/fathima-sithara/music-share/internal/config"
	utils "github.com/fathima-sithara/music-share/internal/utils"
	"github.com/fathima-sithara/music-share/internal/web"
)

func main() {
	cfgPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, config.Web)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Development(), cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client := apiclient.New(cfg.Web.APIBaseURL, cfg.WebTimeout)
	srv, err := web.NewServer(client, logger, web.Options{
		PublicOrigin: cfg.Web.PublicOrigin,
		BodyLimit:    cfg.MaxUploadBytes(),
		AccessLog:    cfg.Development(),
	})
	if err != nil {
		logger.Fatalf("templates: %v", err)
	}
	app := srv.App()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Web.Port)
		logger.Infow("starting music-share web", "addr", addr, "api", cfg.Web.APIBaseURL)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Warnw("http shutdown", "err", err)
	}
	logger.Info("shutdown completed")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
