package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trading_backend/internal/platform/config"
)

// ErrNotConfigured is returned when no Redis address is set.
var ErrNotConfigured = errors.New("redis address not configured")

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrNotConfigured
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zap.L().Error("Redis connection failed", zap.String("address", cfg.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	zap.L().Info("Redis connection successful", zap.String("address", cfg.Addr))
	return rdb, nil
}
