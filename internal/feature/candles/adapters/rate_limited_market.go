package adapters

import (
	"context"

	"trading_backend/internal/feature/candles/domain/entity"
	"trading_backend/internal/feature/candles/usecase"
	"trading_backend/internal/platform/ratelimiter"
)

// rateLimitedMarket は外部APIの呼び出し前にレートリミッターで待機します。
type rateLimitedMarket struct {
	inner   usecase.MarketRepository
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.MarketRepository = (*rateLimitedMarket)(nil)

func NewRateLimitedMarket(inner usecase.MarketRepository, limiter ratelimiter.RateLimiterInterface) *rateLimitedMarket {
	return &rateLimitedMarket{inner: inner, limiter: limiter}
}

func (m *rateLimitedMarket) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.GetTimeSeries(ctx, symbol, interval, outputsize)
}
