// Package usecase はバックテストの実行と履歴参照を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	candleentity "trading_backend/internal/feature/candles/domain/entity"
	sentimententity "trading_backend/internal/feature/sentiment/domain/entity"
	"trading_backend/internal/feature/strategy/domain/backtest"
	"trading_backend/internal/feature/strategy/domain/entity"
	"trading_backend/internal/platform/metrics"
)

const (
	MinPortfolioValue = 100
	MaxPortfolioValue = 10_000_000
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

var (
	ErrInvalidPortfolio = fmt.Errorf("portfolio value must be between %d and %d", MinPortfolioValue, MaxPortfolioValue)
	ErrInvalidParams    = errors.New("invalid backtest parameters")
	ErrNoOverlap        = errors.New("no overlapping price data for the requested symbols")
	ErrRunNotFound      = errors.New("backtest run not found")
	ErrPersist          = errors.New("failed to save backtest run")
)

// CandleReader はローソク足を古い順に返します。
type CandleReader interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]candleentity.Candle, error)
}

// HistoricalSentiment は過去日のセンチメントを返します。
type HistoricalSentiment interface {
	Historical(ctx context.Context, date, asset string) (sentimententity.Reading, error)
}

// RunRepository はバックテスト結果の永続化を抽象化します。
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	FindByID(ctx context.Context, userID uint, id string) (*entity.Run, error)
	List(ctx context.Context, userID uint, limit int) ([]entity.Run, error)
}

// Defaults は設定ファイルから与えられる既定値です。比率は小数です。
type Defaults struct {
	PortfolioValue   float64
	Symbols          []string
	Interval         string
	OutputSize       int
	TakeProfit       float64
	StopLoss         float64
	BullishThreshold float64
	BearishThreshold float64
	ReservePerAsset  float64
}

// RunRequest は1回のバックテスト要求です。nilのフィールドは既定値を使います。
type RunRequest struct {
	UserID           uint
	Symbols          []string
	Interval         string
	OutputSize       int
	PortfolioValue   float64
	TakeProfit       *float64
	StopLoss         *float64
	BullishThreshold *float64
	BearishThreshold *float64
	Signals          entity.SignalMode
}

// Benchmark は1銘柄のバイ・アンド・ホールド評価額です。
type Benchmark struct {
	Symbol string
	Points []backtest.ValuePoint
}

type RunOutput struct {
	Run          entity.Run
	Points       []backtest.ValuePoint
	Benchmarks   []Benchmark
	ClosedTrades []backtest.ClosedTrade
}

type BacktestUsecase struct {
	candles   CandleReader
	sentiment HistoricalSentiment
	runs      RunRepository
	defaults  Defaults
	now       func() time.Time
	newID     func() string
}

func NewBacktestUsecase(candles CandleReader, sentiment HistoricalSentiment, runs RunRepository, defaults Defaults) *BacktestUsecase {
	return &BacktestUsecase{
		candles:   candles,
		sentiment: sentiment,
		runs:      runs,
		defaults:  defaults,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Run は価格を読み込んでバックテストを実行し、結果を保存します。
func (u *BacktestUsecase) Run(ctx context.Context, req RunRequest) (*RunOutput, error) {
	if req.PortfolioValue == 0 {
		req.PortfolioValue = u.defaults.PortfolioValue
	}
	if req.PortfolioValue < MinPortfolioValue || req.PortfolioValue > MaxPortfolioValue {
		return nil, ErrInvalidPortfolio
	}
	symbols := normalizeSymbols(req.Symbols)
	if len(symbols) == 0 {
		symbols = slices.Clone(u.defaults.Symbols)
	}
	interval := req.Interval
	if interval == "" {
		interval = u.defaults.Interval
	}
	outputsize := req.OutputSize
	if outputsize <= 0 {
		outputsize = u.defaults.OutputSize
	}
	mode := req.Signals
	if mode == "" {
		mode = entity.SignalsCycle
	}
	if mode != entity.SignalsCycle && mode != entity.SignalsHistorical {
		return nil, fmt.Errorf("%w: unknown signal mode %q", ErrInvalidParams, mode)
	}

	p := backtest.Params{
		InitialPortfolio: req.PortfolioValue,
		TakeProfit:       orDefault(req.TakeProfit, u.defaults.TakeProfit),
		StopLoss:         orDefault(req.StopLoss, u.defaults.StopLoss),
		BullishThreshold: orDefault(req.BullishThreshold, u.defaults.BullishThreshold),
		BearishThreshold: orDefault(req.BearishThreshold, u.defaults.BearishThreshold),
		ReservePerAsset:  u.defaults.ReservePerAsset,
	}
	if p.TakeProfit <= 0 || p.StopLoss <= 0 || p.BearishThreshold >= p.BullishThreshold {
		return nil, ErrInvalidParams
	}

	series := make(map[string][]backtest.PricePoint, len(symbols))
	for _, s := range symbols {
		cs, err := u.candles.GetCandles(ctx, s, interval, outputsize)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s, err)
		}
		series[s] = toPricePoints(cs)
	}

	rows := backtest.JoinCloses(series, symbols)
	if len(rows) == 0 {
		return nil, ErrNoOverlap
	}

	var signals backtest.SignalSource
	switch mode {
	case entity.SignalsHistorical:
		signals = u.historicalSignals(ctx, symbols, backtest.TradingDays(backtest.RowTimes(rows)))
	default:
		signals = backtest.NewCycleSignals(symbols, backtest.RowTimes(rows))
	}

	res := backtest.Backtest(series, symbols, p, signals)
	lo, hi := backtest.Range(res.Points)

	run := entity.Run{
		ID:           u.newID(),
		UserID:       req.UserID,
		CreatedAt:    u.now().UTC(),
		Symbols:      symbols,
		Interval:     interval,
		Signals:      mode,
		Params:       p,
		FinalValue:   res.Points[len(res.Points)-1].Value,
		MinValue:     lo,
		MaxValue:     hi,
		Transactions: res.Transactions,
	}
	if err := u.runs.Create(ctx, &run); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	metrics.ObserveBacktest(string(mode), len(res.Transactions))
	zap.L().Info("backtest finished",
		zap.String("run_id", run.ID),
		zap.Strings("symbols", symbols),
		zap.Int("transactions", len(res.Transactions)),
		zap.String("final_value", run.FinalValue.StringFixed(2)))

	benchmarks := make([]Benchmark, 0, len(symbols))
	for _, s := range symbols {
		benchmarks = append(benchmarks, Benchmark{Symbol: s, Points: backtest.BuyAndHold(series[s], p.InitialPortfolio)})
	}

	return &RunOutput{
		Run:          run,
		Points:       res.Points,
		Benchmarks:   benchmarks,
		ClosedTrades: backtest.ClosedTrades(res.Transactions, res.Points),
	}, nil
}

// historicalSignals は各取引日のニュースセンチメントを集めます。取得できない日は0として扱います。
func (u *BacktestUsecase) historicalSignals(ctx context.Context, symbols []string, days []time.Time) *backtest.HistoricalSignals {
	sig := backtest.NewHistoricalSignals()
	if u.sentiment == nil {
		return sig
	}
	for _, s := range symbols {
		for _, d := range days {
			r, err := u.sentiment.Historical(ctx, d.Format("2006-01-02"), s)
			if err != nil {
				zap.L().Warn("historical sentiment unavailable",
					zap.String("symbol", s), zap.Time("day", d), zap.Error(err))
				continue
			}
			sig.Set(s, d, r.Score)
		}
	}
	return sig
}

// Get は保存済みの実行結果を返します。
func (u *BacktestUsecase) Get(ctx context.Context, userID uint, id string) (*entity.Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRunNotFound
	}
	return u.runs.FindByID(ctx, userID, id)
}

// List は新しい順に実行結果を返します。
func (u *BacktestUsecase) List(ctx context.Context, userID uint, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	return u.runs.List(ctx, userID, limit)
}

func toPricePoints(cs []candleentity.Candle) []backtest.PricePoint {
	out := make([]backtest.PricePoint, 0, len(cs))
	for _, c := range cs {
		out = append(out, backtest.PricePoint{Time: c.Time, Close: c.Close})
	}
	return out
}

func normalizeSymbols(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
