// Package cache はRedisを使ったリポジトリ・ユースケースのキャッシュデコレーターを提供します。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trading_backend/internal/platform/metrics"
)

// scanBatch はSCAN 1回あたりのキー数です。
const scanBatch = 200

// getOrLoad はkeyのJSONをデコードして返し、無ければloadの結果を保存して返します。
// Redisの障害はキャッシュミスとして扱います。
func getOrLoad[T any](ctx context.Context, rdb *redis.Client, namespace, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out T
		if uerr := json.Unmarshal(b, &out); uerr == nil {
			metrics.ObserveCache(namespace, true)
			return out, nil
		}
		// 破損したエントリは削除する
		_ = rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		zap.L().Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	metrics.ObserveCache(namespace, false)

	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := rdb.Set(ctx, key, b, ttl).Err(); err != nil {
			zap.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// deleteByPattern はSCANでpatternに一致するキーをすべて削除します。
func deleteByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe はRedisキーで問題となる文字を置き換えます。
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_").Replace(s)
}
