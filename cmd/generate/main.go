package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kbowling/prophet-static/internal/betting"
	"github.com/kbowling/prophet-static/internal/display"
	"github.com/kbowling/prophet-static/internal/providers"
	"github.com/kbowling/prophet-static/internal/render"
	"github.com/kbowling/prophet-static/internal/season"
	"github.com/kbowling/prophet-static/internal/services"
	"github.com/kbowling/prophet-static/internal/site"
	"github.com/kbowling/prophet-static/pkg/config"
)

func main() {
	outputFlag := flag.String("output", "", "output directory (overrides OUTPUT_DIR)")
	apiFlag := flag.String("api", "", "Prophet API base URL (overrides API_BASE_URL)")
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if *outputFlag != "" {
		cfg.OutputDir = *outputFlag
	}
	if *apiFlag != "" {
		cfg.APIBaseURL = *apiFlag
	}
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Optional Redis-backed fetch cache; the build runs without one
	var cache betting.CacheProvider
	if cfg.RedisURL != "" {
		redisClient, err := initRedis(cfg, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, fetch cache disabled")
		} else {
			defer redisClient.Close()
			cache = services.NewCacheService(redisClient)
		}
	}

	// Wire the build pipeline
	client := providers.NewProphetClient(providers.ProphetClientConfig{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.APITimeout,
		RequestsPerSecond: cfg.APIRateLimit,
		CacheTTL:          cfg.CacheTTL,
	}, cache, logger)
	assembler := season.NewAssembler(client, logger, display.ParseScale(cfg.SourceScale), cfg.DefaultTotalWeeks)
	renderer, err := render.NewRenderer(logger, cfg.StartingBankroll, false)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load report template")
	}
	writer := site.NewWriter(cfg.OutputDir, cfg.AssetsDir, logger)
	builder := services.NewSiteBuilder(assembler, renderer, writer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := builder.Build(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Build failed")
	}

	logger.WithFields(logrus.Fields{
		"build_id": result.BuildID,
		"weeks":    result.TotalWeeks,
		"output":   result.OutputDir,
	}).Info("Report generated")
}

func initRedis(cfg *config.Config, logger *logrus.Logger) (*redis.Client, error) {
	logger.Info("Connecting to Redis...")

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return client, nil
}
