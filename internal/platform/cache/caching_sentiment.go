package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trading_backend/internal/feature/sentiment/domain/entity"
)

const (
	defaultHistoryTTL         = 24 * time.Hour
	defaultSentimentNamespace = "sentiment"
)

// SentimentReader は履歴と現在のセンチメントを返すユースケースです。
type SentimentReader interface {
	Current(ctx context.Context, asset string) (entity.Reading, error)
	Historical(ctx context.Context, date, asset string) (entity.Reading, error)
}

// CachingSentimentReader は過去日のセンチメントをキャッシュします。
// 現在のセンチメントは常にinnerへ委譲します。
type CachingSentimentReader struct {
	inner     SentimentReader
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ SentimentReader = (*CachingSentimentReader)(nil)

func NewCachingSentimentReader(rdb *redis.Client, ttl time.Duration, inner SentimentReader) *CachingSentimentReader {
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &CachingSentimentReader{inner: inner, rdb: rdb, ttl: ttl, namespace: defaultSentimentNamespace}
}

func (c *CachingSentimentReader) Current(ctx context.Context, asset string) (entity.Reading, error) {
	return c.inner.Current(ctx, asset)
}

// Historical は (date, asset) ごとに結果をキャッシュします。エラーはキャッシュしません。
func (c *CachingSentimentReader) Historical(ctx context.Context, date, asset string) (entity.Reading, error) {
	if c.rdb == nil {
		return c.inner.Historical(ctx, date, asset)
	}
	key := fmt.Sprintf("%s:history:%s:%s", c.namespace, safe(date), safe(strings.ToUpper(strings.TrimSpace(asset))))
	return getOrLoad(ctx, c.rdb, c.namespace, key, c.ttl, func(ctx context.Context) (entity.Reading, error) {
		return c.inner.Historical(ctx, date, asset)
	})
}
