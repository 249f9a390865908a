package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trading_backend/internal/app/router"
	authadapters "trading_backend/internal/feature/auth/adapters"
	authentity "trading_backend/internal/feature/auth/domain/entity"
	authhandler "trading_backend/internal/feature/auth/transport/handler"
	authusecase "trading_backend/internal/feature/auth/usecase"
	candlesadapters "trading_backend/internal/feature/candles/adapters"
	candleshandler "trading_backend/internal/feature/candles/transport/handler"
	candlesusecase "trading_backend/internal/feature/candles/usecase"
	dashboardadapters "trading_backend/internal/feature/dashboard/adapters"
	dashboardentity "trading_backend/internal/feature/dashboard/domain/entity"
	dashboardhandler "trading_backend/internal/feature/dashboard/transport/handler"
	dashboardusecase "trading_backend/internal/feature/dashboard/usecase"
	marketadapters "trading_backend/internal/feature/marketclock/adapters"
	"trading_backend/internal/feature/marketclock/domain/calendar"
	markethandler "trading_backend/internal/feature/marketclock/transport/handler"
	marketusecase "trading_backend/internal/feature/marketclock/usecase"
	"trading_backend/internal/feature/sentiment/adapters/gemini"
	"trading_backend/internal/feature/sentiment/adapters/vader"
	sentimenthandler "trading_backend/internal/feature/sentiment/transport/handler"
	sentimentusecase "trading_backend/internal/feature/sentiment/usecase"
	strategyadapters "trading_backend/internal/feature/strategy/adapters"
	strategyhandler "trading_backend/internal/feature/strategy/transport/handler"
	strategyusecase "trading_backend/internal/feature/strategy/usecase"
	watchlistadapters "trading_backend/internal/feature/watchlist/adapters"
	watchlistentity "trading_backend/internal/feature/watchlist/domain/entity"
	watchlisthandler "trading_backend/internal/feature/watchlist/transport/handler"
	watchlistusecase "trading_backend/internal/feature/watchlist/usecase"
	"trading_backend/internal/platform/cache"
	"trading_backend/internal/platform/config"
	"trading_backend/internal/platform/externalapi/finnhub"
	"trading_backend/internal/platform/externalapi/newsapi"
	infrahttp "trading_backend/internal/platform/http"
	"trading_backend/internal/platform/http/handler"
	jwtmw "trading_backend/internal/platform/jwt"
)

// Models はAutoMigrateの対象となるすべてのgormモデルです。
func Models() []any {
	return []any{
		&authentity.User{},
		&watchlistentity.Symbol{},
		&candlesadapters.CandleModel{},
		&strategyadapters.RunModel{},
		&strategyadapters.TransactionModel{},
		&dashboardadapters.SettingsModel{},
	}
}

// Container holds what cmd binaries need after wiring.
type Container struct {
	Handlers  router.Handlers
	Checks    map[string]handler.Check
	Ingest    *candlesusecase.IngestUsecase
	Watchlist *watchlistusecase.SymbolUsecase
	Calendar  *marketusecase.CalendarUsecase
}

// NewScorer returns the headline scorer selected by sentiment.scorer.
func NewScorer(ctx context.Context, cfg config.Config) (sentimentusecase.Scorer, error) {
	if cfg.Sentiment.Scorer == "gemini" {
		return gemini.NewGeminiScorer(ctx, cfg.Gemini.Model)
	}
	return vader.NewScorer(), nil
}

// NewCalendar builds the market calendar for clock.market_zone.
func NewCalendar(cfg config.Config) (*marketusecase.CalendarUsecase, error) {
	loc, err := time.LoadLocation(cfg.Clock.MarketZone)
	if err != nil {
		return nil, fmt.Errorf("load market zone: %w", err)
	}
	provider := finnhub.NewClient(finnhub.ConfigFrom(cfg.Finnhub), infrahttp.NewHTTPClient(cfg.Finnhub.Timeout))
	cities := make([]calendar.City, 0, len(cfg.Clock.Cities))
	for _, c := range cfg.Clock.Cities {
		cities = append(cities, calendar.City{Name: c.Name, Zone: c.Zone})
	}
	hours := marketusecase.Hours{
		OpenHour:    cfg.Clock.MarketOpenHour,
		OpenMinute:  cfg.Clock.MarketOpenMinute,
		CloseHour:   cfg.Clock.MarketCloseHour,
		CloseMinute: cfg.Clock.MarketCloseMinute,
	}
	return marketusecase.NewCalendarUsecase(provider, marketadapters.NewHolidayFileStore(cfg.Holidays.CacheDir), loc, hours, cities), nil
}

func candleStore(cfg config.Config, db *gorm.DB, rdb *redis.Client) candlesusecase.CandleRepository {
	return cache.NewCachingCandleRepository(rdb, cfg.Cache.MarketTTL, candlesadapters.NewCandleRepository(db), "candles")
}

// NewIngest builds the ingest usecase and the watchlist it reads symbols from.
func NewIngest(cfg config.Config, db *gorm.DB, rdb *redis.Client) (*candlesusecase.IngestUsecase, *watchlistusecase.SymbolUsecase) {
	market := NewMarket(cfg.TwelveData)
	return candlesusecase.NewIngestUsecase(market.Raw, candleStore(cfg, db, rdb), market.Limiter),
		watchlistusecase.NewSymbolUsecase(watchlistadapters.NewSymbolRepository(db))
}

// Build wires every feature. rdb may be nil, in which case nothing is cached.
func Build(ctx context.Context, cfg config.Config, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	// candles
	market := NewMarket(cfg.TwelveData)
	candleRepo := candleStore(cfg, db, rdb)
	candlesUC := candlesusecase.NewCandlesUsecase(candleRepo, market.Limited).WithRefreshAfter(cfg.Cache.IntradayRefresh)
	ingestUC := candlesusecase.NewIngestUsecase(market.Raw, candleRepo, market.Limiter)

	// sentiment
	scorer, err := NewScorer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	news := newsapi.NewClient(newsapi.ConfigFrom(cfg.NewsAPI), infrahttp.NewHTTPClient(cfg.NewsAPI.Timeout))
	sentimentUC := sentimentusecase.NewSentimentUsecase(news, scorer, sentimentusecase.Thresholds{
		Bullish: cfg.Sentiment.BullishThreshold,
		Bearish: cfg.Sentiment.BearishThreshold,
	})
	sentiment := cache.NewCachingSentimentReader(rdb, cfg.Cache.HistoryTTL, sentimentUC)

	// strategy
	backtestUC := strategyusecase.NewBacktestUsecase(candlesUC, sentiment, strategyadapters.NewRunRepository(db), strategyusecase.Defaults{
		PortfolioValue:   cfg.Trading.DefaultPortfolioValue,
		Symbols:          cfg.Dashboard.Symbols,
		Interval:         cfg.Dashboard.DefaultInterval,
		OutputSize:       candlesusecase.DefaultOutputSize,
		TakeProfit:       cfg.Trading.TakeProfitPct / 100,
		StopLoss:         cfg.Trading.StopLossPct / 100,
		BullishThreshold: cfg.Sentiment.BullishThreshold,
		BearishThreshold: cfg.Sentiment.BearishThreshold,
		ReservePerAsset:  cfg.Trading.ReservePerAsset,
	})

	// marketclock
	calendarUC, err := NewCalendar(cfg)
	if err != nil {
		return nil, err
	}

	// dashboard
	limits := dashboardentity.Limits{
		DefaultPortfolioValue: cfg.Dashboard.DefaultPortfolioValue,
		MinPortfolioValue:     cfg.Dashboard.MinPortfolioValue,
		MaxPortfolioValue:     cfg.Dashboard.MaxPortfolioValue,
		DefaultInterval:       cfg.Dashboard.DefaultInterval,
	}
	dashboardUC := dashboardusecase.NewDashboardUsecase(dashboardadapters.NewSettingsRepository(db), candlesUC, sentiment, calendarUC, cfg.Dashboard.Symbols, limits)

	// auth
	if cfg.Auth.JWTSecret == "" {
		zap.L().Warn("auth.jwt_secret is not set; protected routes will return 500")
	}
	authUC := authusecase.NewAuthUsecase(authadapters.NewUserRepository(db), jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime))

	// watchlist
	watchlistUC := watchlistusecase.NewSymbolUsecase(watchlistadapters.NewSymbolRepository(db))

	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	return &Container{
		Handlers: router.Handlers{
			Auth:      authhandler.NewAuthHandler(authUC),
			Candles:   candleshandler.NewCandlesHandler(candlesUC, cfg.Dashboard.Symbols),
			Sentiment: sentimenthandler.NewSentimentHandler(sentiment, cfg.Sentiment.HeadlineLimit),
			Backtests: strategyhandler.NewBacktestHandler(backtestUC),
			Market:    markethandler.NewMarketHandler(calendarUC),
			Dashboard: dashboardhandler.NewDashboardHandler(dashboardUC, limits, cfg.Sentiment.HeadlineLimit),
			Symbols:   watchlisthandler.NewSymbolHandler(watchlistUC),
		},
		Checks:    checks,
		Ingest:    ingestUC,
		Watchlist: watchlistUC,
		Calendar:  calendarUC,
	}, nil
}
