package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trading_backend/internal/feature/candles/domain/entity"
	"trading_backend/internal/feature/candles/usecase"
)

const (
	defaultCandleTTL       = 5 * time.Minute
	defaultCandleNamespace = "candles"
)

// CachingCandleRepository はCandleRepositoryにRedisキャッシュを付与するデコレーターです。
type CachingCandleRepository struct {
	inner     usecase.CandleRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// NewCachingCandleRepository はttlが0以下なら5分、namespaceが空なら"candles"を使います。
// rdbがnilの場合はキャッシュせずinnerへ委譲します。
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string) *CachingCandleRepository {
	if ttl <= 0 {
		ttl = defaultCandleTTL
	}
	if namespace == "" {
		namespace = defaultCandleNamespace
	}
	return &CachingCandleRepository{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// UpsertBatch は書き込み後、影響する symbol+interval のキャッシュを無効化します。
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	if c.rdb == nil || len(candles) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.keyPrefix(cd.Symbol, cd.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := deleteByPattern(ctx, c.rdb, prefix+"*"); err != nil {
			zap.L().Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
	return nil
}

// Find はキャッシュを優先し、ミスした場合はinnerから読み込んでキャッシュします。
func (c *CachingCandleRepository) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	}
	key := fmt.Sprintf("%s%d", c.keyPrefix(symbol, interval), outputsize)
	return getOrLoad(ctx, c.rdb, c.namespace, key, c.ttl, func(ctx context.Context) ([]entity.Candle, error) {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	})
}

func (c *CachingCandleRepository) keyPrefix(symbol, interval string) string {
	return fmt.Sprintf("%s:%s:%s:", c.namespace, safe(symbol), safe(interval))
}
