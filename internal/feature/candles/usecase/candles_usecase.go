// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"trading_backend/internal/feature/candles/domain/entity"
)

const (
	// DefaultInterval はローソク足クエリのデフォルト時間間隔です。
	DefaultInterval = "1day"
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 5000
	// DefaultRefreshAfter は取り込み対象外の時間足を再取得するまでの間隔です。
	DefaultRefreshAfter = 5 * time.Minute
)

var (
	ErrInvalidInterval = errors.New("unsupported interval")
	ErrSymbolRequired  = errors.New("symbol is required")
)

// CandleRepository はローソク足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// Find は新しい順に最大outputsize件を返します。
	Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// CandlesUsecase はストアを優先し、未取得の銘柄は外部APIから読み込んで保存します。
// 定期取り込みの対象外の時間足（分足・時間足）はrefreshAfterごとに外部APIから取り直します。
type CandlesUsecase struct {
	candle       CandleRepository
	market       MarketRepository
	refreshAfter time.Duration
	now          func() time.Time

	mu        sync.Mutex
	fetchedAt map[string]time.Time
}

// NewCandlesUsecase はCandlesUsecaseを生成します。marketがnilの場合は読み込みを行いません。
func NewCandlesUsecase(candle CandleRepository, market MarketRepository) *CandlesUsecase {
	return &CandlesUsecase{
		candle:       candle,
		market:       market,
		refreshAfter: DefaultRefreshAfter,
		now:          time.Now,
		fetchedAt:    map[string]time.Time{},
	}
}

// WithRefreshAfter は分足・時間足の再取得間隔を設定します。
func (cu *CandlesUsecase) WithRefreshAfter(d time.Duration) *CandlesUsecase {
	cu.refreshAfter = d
	return cu
}

// GetCandles は指定された銘柄と時間足のローソク足を古い順に返します。
func (cu *CandlesUsecase) GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	if interval == "" {
		interval = DefaultInterval
	}
	if !entity.IsValidInterval(interval) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}

	cs, err := cu.candle.Find(ctx, symbol, interval, outputsize)
	if err != nil {
		return nil, err
	}
	if cu.market != nil && (len(cs) == 0 || cu.stale(symbol, interval)) {
		fetched, err := cu.readThrough(ctx, symbol, interval, outputsize)
		switch {
		case err == nil:
			cs = fetched
		case len(cs) == 0:
			return nil, err
		default:
			// 更新に失敗した場合は保存済みのデータを返す
			zap.L().Warn("failed to refresh candles, serving stored data",
				zap.String("symbol", symbol), zap.String("interval", interval), zap.Error(err))
		}
	}

	entity.SortChronological(cs)
	return cs, nil
}

// stale reports whether a non-ingested interval is due for another market fetch.
func (cu *CandlesUsecase) stale(symbol, interval string) bool {
	if slices.Contains(ingestIntervals, interval) {
		return false
	}
	cu.mu.Lock()
	defer cu.mu.Unlock()
	at, ok := cu.fetchedAt[symbol+":"+interval]
	return !ok || cu.now().Sub(at) >= cu.refreshAfter
}

func (cu *CandlesUsecase) markFetched(symbol, interval string) {
	cu.mu.Lock()
	defer cu.mu.Unlock()
	cu.fetchedAt[symbol+":"+interval] = cu.now()
}

func (cu *CandlesUsecase) readThrough(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	cs, err := cu.market.GetTimeSeries(ctx, symbol, interval, outputsize)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, interval, err)
	}
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = interval
	}
	cu.markFetched(symbol, interval)
	if err := cu.candle.UpsertBatch(ctx, cs); err != nil {
		// 保存に失敗しても取得済みのデータは返す
		zap.L().Warn("failed to store fetched candles",
			zap.String("symbol", symbol), zap.String("interval", interval), zap.Error(err))
	}
	return cs, nil
}

// Compare は各銘柄の終値を先頭=100に正規化して返します。
func (cu *CandlesUsecase) Compare(ctx context.Context, symbols []string, interval string, outputsize int) ([]entity.Comparison, error) {
	out := make([]entity.Comparison, 0, len(symbols))
	for _, s := range symbols {
		cs, err := cu.GetCandles(ctx, s, interval, outputsize)
		if err != nil {
			return nil, err
		}
		out = append(out, entity.Comparison{
			Symbol: strings.ToUpper(strings.TrimSpace(s)),
			Points: entity.Normalize(cs),
		})
	}
	return out, nil
}
