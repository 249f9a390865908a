// Command ingest fetches daily, weekly and monthly candles for every active
// watchlist symbol once and exits.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"trading_backend/internal/app/di"
	"trading_backend/internal/platform/config"
	infradb "trading_backend/internal/platform/db"
	"trading_backend/internal/platform/logger"
	infraredis "trading_backend/internal/platform/redis"
)

func main() {
	configPath := flag.String("config", os.Getenv("TRADER_CONFIG"), "path to a YAML config file")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall ingest deadline")
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := infradb.OpenDB(cfg.DB, di.Models()...)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}

	// キャッシュ無効化のためRedisがあれば使う
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable. Cached candles will expire by TTL.", zap.Error(err))
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}

	ingest, watchlist := di.NewIngest(cfg, db, rdb)
	if err := watchlist.EnsureDefaults(ctx, cfg.Dashboard.Symbols); err != nil {
		log.Warn("failed to seed watchlist", zap.Error(err))
	}

	symbols, err := watchlist.ListActiveCodes(ctx)
	if err != nil {
		log.Fatal("failed to load symbols", zap.Error(err))
	}
	if err := ingest.IngestAll(ctx, symbols); err != nil {
		log.Fatal("ingest failed", zap.Error(err))
	}
	log.Info("ingest ok", zap.Int("symbols", len(symbols)))
}
