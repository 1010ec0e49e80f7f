package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
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
	watchFlag := flag.Duration("watch", 0, "rebuild interval (overrides REBUILD_INTERVAL)")
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if *watchFlag > 0 {
		cfg.RebuildInterval = *watchFlag
	}

	// Set log level based on environment
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Starting preview server")

	// Optional Redis-backed fetch cache
	var cache betting.CacheProvider
	var cacheService *services.CacheService
	if cfg.RedisURL != "" {
		redisClient, err := initRedis(cfg, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, fetch cache disabled")
		} else {
			defer redisClient.Close()
			cacheService = services.NewCacheService(redisClient)
			cache = cacheService
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
	renderer, err := render.NewRenderer(logger, cfg.StartingBankroll, true)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load report template")
	}
	writer := site.NewWriter(cfg.OutputDir, cfg.AssetsDir, logger)
	builder := services.NewSiteBuilder(assembler, renderer, writer, logger)

	hub := services.NewReloadHub(logger)
	go hub.Run()

	rebuildService := services.NewRebuildService(builder, hub, logger, cfg.RebuildInterval)

	// Initial build. The server still starts when it fails and serves whatever
	// the output directory already holds.
	buildCtx, buildCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if _, err := builder.Build(buildCtx); err != nil {
		logger.WithError(err).Error("Initial build failed")
	}
	buildCancel()

	if cfg.RebuildInterval > 0 {
		if err := rebuildService.Start(); err != nil {
			logger.WithError(err).Error("Failed to start rebuild service")
		}
		defer rebuildService.Stop()
	}

	// Set up router
	router := setupRouter(builder, rebuildService, hub, cacheService, cfg.OutputDir, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.WithField("addr", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
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

func setupRouter(builder *services.SiteBuilder, rebuildService *services.RebuildService, hub *services.ReloadHub, cacheService *services.CacheService, outputDir string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Report API
	api := router.Group("/api")
	{
		api.GET("/season", func(c *gin.Context) {
			snapshot := builder.LastSnapshot()
			if snapshot == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no build completed yet"})
				return
			}
			c.JSON(http.StatusOK, snapshot)
		})

		api.POST("/rebuild", func(c *gin.Context) {
			// A forced rebuild should see fresh season data, not the cached
			// mid-week figures.
			if cacheService != nil {
				keys := []string{providers.CurrentWeekCacheKey(), providers.SeasonPerformanceCacheKey()}
				if err := cacheService.Delete(c.Request.Context(), keys...); err != nil {
					logger.WithError(err).Warn("Failed to invalidate season cache keys")
				}
			}
			rebuildService.TriggerNow()
			c.JSON(http.StatusAccepted, gin.H{"status": "rebuild started"})
		})

		api.GET("/rebuild", func(c *gin.Context) {
			c.JSON(http.StatusOK, rebuildService.Status())
		})
	}

	// Live reload endpoint
	router.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	// Everything else is the generated site
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(outputDir))))

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func loggingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.LoggerWithWriter(logger.Writer())
}
