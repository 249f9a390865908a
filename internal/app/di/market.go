// Package di builds the application's components from configuration.
package di

import (
	"time"

	candlesadapters "trading_backend/internal/feature/candles/adapters"
	candlesusecase "trading_backend/internal/feature/candles/usecase"
	"trading_backend/internal/platform/config"
	"trading_backend/internal/platform/externalapi/twelvedata"
	infrahttp "trading_backend/internal/platform/http"
	"trading_backend/internal/platform/ratelimiter"
)

// Market はTwelve Dataクライアントと、それを共有するレートリミッターです。
// Rawはインジェストがリミッターを直接待つときに使います。
type Market struct {
	Raw     *twelvedata.TwelveDataMarket
	Limited candlesusecase.MarketRepository
	Limiter *ratelimiter.RateLimiter
}

// NewMarket creates the Twelve Data client limited to requests_per_minute.
func NewMarket(cfg config.TwelveDataConfig) Market {
	tcfg := twelvedata.ConfigFrom(cfg)
	raw := twelvedata.NewTwelveDataMarket(tcfg, infrahttp.NewHTTPClient(tcfg.Timeout))
	limiter := ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute)
	return Market{
		Raw:     raw,
		Limited: candlesadapters.NewRateLimitedMarket(raw, limiter),
		Limiter: limiter,
	}
}
