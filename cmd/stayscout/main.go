package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stayscout/stayscout/internal/engine"
	"github.com/stayscout/stayscout/internal/history"
	"github.com/stayscout/stayscout/internal/hotels"
	"github.com/stayscout/stayscout/internal/search"
	"github.com/stayscout/stayscout/internal/telegram"
	"github.com/stayscout/stayscout/pkg/config"
	"github.com/stayscout/stayscout/pkg/logging"
	"github.com/stayscout/stayscout/pkg/observability"
	"github.com/stayscout/stayscout/pkg/session"
)

var (
	// Version information (set via ldflags)
	Version = "dev"

	// Command line flags
	configFile = flag.String("config", getEnv("CONFIG_FILE", ""), "Configuration file")
	env        = flag.String("env", getEnv("APP_ENV", "development"), "Environment (development, production)")
)

func main() {
	flag.Parse()

	logger, err := logging.New(*env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting stayscout", zap.String("version", Version))

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Fatal("configuration failed", zap.Error(err))
	}

	// Observability
	observability.InitMetrics()
	healthChecker := observability.InitHealthChecker()
	healthChecker.RegisterCheck(observability.PingCheck())

	obsServer := observability.NewServer(observability.ServerConfig{
		Port:          cfg.Runtime.ObservabilityPort,
		EnableMetrics: cfg.Runtime.EnableMetrics,
	})
	errChan := make(chan error, 2)
	go func() {
		logger.Info("observability server listening", zap.Int("port", cfg.Runtime.ObservabilityPort))
		if err := obsServer.Start(); err != nil {
			errChan <- fmt.Errorf("observability server: %w", err)
		}
	}()

	// Domain wiring
	api, err := hotels.New(hotels.Config{
		APIKey: cfg.HotelsAPIKey,
		Host:   cfg.HotelsAPIHost,
	}, logger.Named("hotels"))
	if err != nil {
		logger.Fatal("hotels client failed", zap.Error(err))
	}

	orchestrator := search.New(api, logger.Named("search"),
		search.WithPageSize(cfg.Search.PageSize))

	bot, err := telegram.New(cfg.TelegramToken,
		time.Duration(cfg.Runtime.LongPollTimeout)*time.Second,
		logger.Named("telegram"))
	if err != nil {
		logger.Fatal("telegram connection failed", zap.Error(err))
	}

	eng := engine.New(engine.Config{
		Store:     session.NewStore(),
		History:   history.NewLog(),
		Searcher:  orchestrator,
		Messenger: bot,
		Logger:    logger.Named("engine"),
		MaxHotels: cfg.Search.MaxHotels,
		MaxPhotos: cfg.Search.MaxPhotos,
	})
	bot.Attach(eng)

	healthChecker.RegisterCheck(observability.ExternalServiceCheck("hotels-api", func(ctx context.Context) error {
		_, err := api.SearchDestinations(ctx, "london")
		return err
	}))

	go func() {
		bot.Start(context.Background())
	}()

	// Wait for shutdown signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Error("fatal error", zap.Error(err))
	case <-quit:
		logger.Info("shutting down")
	}

	bot.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := obsServer.Shutdown(ctx); err != nil {
		logger.Error("observability server shutdown failed", zap.Error(err))
	}

	logger.Info("stopped")
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
