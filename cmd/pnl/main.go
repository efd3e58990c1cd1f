package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/kalshiledger/config"
	"github.com/alejandrodnm/kalshiledger/internal/adapters/kalshi"
	"github.com/alejandrodnm/kalshiledger/internal/adapters/notify"
	"github.com/alejandrodnm/kalshiledger/internal/adapters/storage"
	"github.com/alejandrodnm/kalshiledger/internal/reconcile"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	sync := flag.Bool("sync", false, "fetch fills/settlements from the API before reporting")
	table := flag.Bool("table", false, "print the full per-contract table (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("kalshiledger starting",
		"config", *configPath,
		"sync", *sync,
		"dsn", cfg.Storage.DSN,
	)

	client := kalshi.NewClient(cfg.API.BaseURL, cfg.API.Key)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	reporter := notify.NewConsole(*table)
	svc := reconcile.New(client, store, reporter, cfg.Engine.Workers)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *sync {
		if err := svc.Sync(ctx); err != nil {
			slog.Error("sync failed", "err", err)
			os.Exit(1)
		}
	}

	if _, err := svc.Report(ctx); err != nil {
		slog.Error("report failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
