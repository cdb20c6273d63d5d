package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/robdiste97/telegram-offerte-bot/internal/app"
	"github.com/robdiste97/telegram-offerte-bot/internal/config"
	"github.com/robdiste97/telegram-offerte-bot/internal/logger"
	"github.com/robdiste97/telegram-offerte-bot/internal/metrics"
	"github.com/robdiste97/telegram-offerte-bot/internal/rss"
	"github.com/robdiste97/telegram-offerte-bot/internal/state"
	"github.com/robdiste97/telegram-offerte-bot/internal/telegram"
)

const fetchTimeout = 20 * time.Second

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	go startMonitoringServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("cannot open state store", "err", err)
		os.Exit(1)
	}

	bot := app.New(cfg, app.Deps{
		Fetcher: rss.NewFetcher(fetchTimeout),
		Sender:  telegram.NewClient(cfg.Token),
		Store:   store,
	})
	bot.Run(ctx)
}

// openStore picks the Postgres backend when DATABASE_URL is set (hosts with
// an ephemeral filesystem), the JSON file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	if cfg.DatabaseURL != "" {
		logger.Info("using postgres state store")
		return state.NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	logger.Info("using file state store", "path", cfg.StatePath)
	return state.NewFileStore(cfg.StatePath), nil
}

// startMonitoringServer answers the platform liveness probes and exposes the
// pipeline counters. It shares nothing with the scheduler loop beyond the
// mutex-guarded metrics snapshot.
func startMonitoringServer() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", ok)
	r.GET("/health", ok)
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Global.Snapshot())
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("monitoring server listening", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Error("monitoring server stopped", "err", err)
	}
}
