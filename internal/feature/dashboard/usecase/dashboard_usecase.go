// Package usecase はダッシュボード表示に必要なデータの集約を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	candleentity "trading_backend/internal/feature/candles/domain/entity"
	"trading_backend/internal/feature/dashboard/domain/entity"
	marketusecase "trading_backend/internal/feature/marketclock/usecase"
	sentimententity "trading_backend/internal/feature/sentiment/domain/entity"
)

var ErrSettingsNotFound = errors.New("settings not found")

type SettingsRepository interface {
	Find(ctx context.Context, userID uint) (*entity.Settings, error)
	Save(ctx context.Context, s *entity.Settings) error
}

type CandleReader interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]candleentity.Candle, error)
}

type SentimentReader interface {
	Current(ctx context.Context, asset string) (sentimententity.Reading, error)
}

type MarketClock interface {
	Now() time.Time
	Status(ctx context.Context) string
	Countdown(ctx context.Context) marketusecase.Countdown
	Upcoming(ctx context.Context, n int) []marketusecase.Holiday
	Source(year int) marketusecase.Source
}

// SymbolOverview は1銘柄分の表示データです。取得に失敗した銘柄はAvailable=falseです。
type SymbolOverview struct {
	Symbol       string
	Available    bool
	Error        string
	CurrentPrice *float64
	Candles      []candleentity.Candle
	Normalized   []candleentity.NormalizedPoint
}

type MarketOverview struct {
	Now       time.Time
	Status    string
	Countdown marketusecase.Countdown
	Upcoming  []marketusecase.Holiday
	Source    marketusecase.Source
}

type Overview struct {
	Settings       entity.Settings
	OutputSize     int
	Symbols        []SymbolOverview
	Sentiment      *sentimententity.Reading
	SentimentError string
	Market         MarketOverview
}

type DashboardUsecase struct {
	settings  SettingsRepository
	candles   CandleReader
	sentiment SentimentReader
	clock     MarketClock
	symbols   []string
	limits    entity.Limits
	now       func() time.Time
}

func NewDashboardUsecase(settings SettingsRepository, candles CandleReader, sentiment SentimentReader, clock MarketClock, symbols []string, limits entity.Limits) *DashboardUsecase {
	return &DashboardUsecase{
		settings:  settings,
		candles:   candles,
		sentiment: sentiment,
		clock:     clock,
		symbols:   symbols,
		limits:    limits,
		now:       time.Now,
	}
}

// GetSettings は保存済みの設定を返します。未保存なら既定値です。
func (u *DashboardUsecase) GetSettings(ctx context.Context, userID uint) (entity.Settings, error) {
	s, err := u.settings.Find(ctx, userID)
	if errors.Is(err, ErrSettingsNotFound) {
		return u.limits.Default(userID), nil
	}
	if err != nil {
		return entity.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return *s, nil
}

func (u *DashboardUsecase) UpdateSettings(ctx context.Context, userID uint, portfolioValue float64, interval string) (entity.Settings, error) {
	s := entity.Settings{UserID: userID, PortfolioValue: portfolioValue, Interval: interval, UpdatedAt: u.now().UTC()}
	if err := u.limits.Validate(s); err != nil {
		return entity.Settings{}, err
	}
	if err := u.settings.Save(ctx, &s); err != nil {
		return entity.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return s, nil
}

// Overview は設定に従って各銘柄の足、現在のセンチメント、市場状況を並行して取得します。
// 個別の取得失敗は結果の中で表し、エラーにはしません。
func (u *DashboardUsecase) Overview(ctx context.Context, userID uint) (*Overview, error) {
	settings, err := u.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &Overview{
		Settings:   settings,
		OutputSize: candleentity.OutputSizeForInterval(settings.Interval),
		Symbols:    make([]SymbolOverview, len(u.symbols)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range u.symbols {
		g.Go(func() error {
			out.Symbols[i] = u.symbolOverview(gctx, sym, settings.Interval, out.OutputSize)
			return nil
		})
	}
	g.Go(func() error {
		r, err := u.sentiment.Current(gctx, "")
		if err != nil {
			zap.L().Warn("dashboard sentiment unavailable", zap.Error(err))
			out.SentimentError = err.Error()
			return nil
		}
		out.Sentiment = &r
		return nil
	})
	g.Go(func() error {
		now := u.clock.Now()
		out.Market = MarketOverview{
			Now:       now,
			Status:    u.clock.Status(gctx),
			Countdown: u.clock.Countdown(gctx),
			Upcoming:  u.clock.Upcoming(gctx, 2),
			Source:    u.clock.Source(now.Year()),
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *DashboardUsecase) symbolOverview(ctx context.Context, symbol, interval string, outputsize int) SymbolOverview {
	so := SymbolOverview{Symbol: symbol}
	cs, err := u.candles.GetCandles(ctx, symbol, interval, outputsize)
	if err != nil {
		zap.L().Warn("dashboard candles unavailable",
			zap.String("symbol", symbol), zap.String("interval", interval), zap.Error(err))
		so.Error = err.Error()
		return so
	}
	so.Available = len(cs) > 0
	so.Candles = cs
	so.Normalized = candleentity.Normalize(cs)
	if p, ok := candleentity.LatestClose(cs); ok {
		so.CurrentPrice = &p
	}
	return so
}
