package usecase

import (
	"context"

	"go.uber.org/zap"

	"trading_backend/internal/feature/candles/domain/entity"
	"trading_backend/internal/platform/ratelimiter"
)

const (
	ingestOutputSize = 200 // 1回のリクエストで取得するデータ件数
)

// ingestIntervals はデータ取得の対象となる時間足のリストです。
var ingestIntervals = []string{"1day", "1week", "1month"}

// MarketRepository は株価データを取得する外部APIのインターフェイスです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
}

// IngestUsecase は外部APIからデータを取得し、データベースに永続化するユースケースを定義します。
type IngestUsecase struct {
	market      MarketRepository
	candle      CandleRepository
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{market: market, candle: candle, rateLimiter: rateLimiter}
}

// ingestOne は1銘柄・1時間足の時系列データを取得してupsertします。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, interval string, outputsize int) error {
	cs, err := iu.market.GetTimeSeries(ctx, symbol, interval, outputsize)
	if err != nil {
		return err
	}

	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = interval
	}
	return iu.candle.UpsertBatch(ctx, cs)
}

// IngestAll は全銘柄を日足・週足・月足で取得して永続化します。
// 個別の失敗はログに記録して次へ進み、ctxがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	var ok, failed int
	for _, s := range symbols {
		for _, interval := range ingestIntervals {
			if err := iu.rateLimiter.Wait(ctx); err != nil {
				return err
			}
			if err := iu.ingestOne(ctx, s, interval, ingestOutputSize); err != nil {
				failed++
				zap.L().Error("failed to ingest data",
					zap.String("symbol", s), zap.String("interval", interval), zap.Error(err))
				continue
			}
			ok++
		}
	}
	zap.L().Info("ingest finished", zap.Int("succeeded", ok), zap.Int("failed", failed))
	return nil
}
