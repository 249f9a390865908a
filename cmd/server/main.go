package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trading_backend/internal/app/di"
	"trading_backend/internal/app/router"
	"trading_backend/internal/platform/config"
	infradb "trading_backend/internal/platform/db"
	"trading_backend/internal/platform/logger"
	infraredis "trading_backend/internal/platform/redis"
	"trading_backend/internal/platform/scheduler"
)

// ジョブ1回あたりの上限
const jobTimeout = 10 * time.Minute

func main() {
	configPath := flag.String("config", os.Getenv("TRADER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(cfg.DB, di.Models()...)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("Redis unavailable. Running without cache.", zap.Error(err))
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("failed to close Redis client", zap.Error(err))
			}
		}()
	}

	c, err := di.Build(ctx, cfg, db, rdb)
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}
	if err := c.Watchlist.EnsureDefaults(ctx, cfg.Dashboard.Symbols); err != nil {
		log.Warn("failed to seed watchlist", zap.Error(err))
	}

	// cron
	runner := scheduler.New(ctx, log, jobTimeout)
	if cfg.Cron.Enabled {
		if err := runner.Add("ingest", cfg.Cron.Ingest, func(ctx context.Context) error {
			symbols, err := c.Watchlist.ListActiveCodes(ctx)
			if err != nil {
				return err
			}
			return c.Ingest.IngestAll(ctx, symbols)
		}); err != nil {
			log.Fatal("invalid cron.ingest", zap.Error(err))
		}
		if err := runner.Add("holiday_refresh", cfg.Cron.HolidayRefresh, c.Calendar.Refresh); err != nil {
			log.Fatal("invalid cron.holiday_refresh", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	if cfg.App.Env == "dev" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router.NewRouter(c.Handlers, cfg.Auth.JWTSecret, c.Checks),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
