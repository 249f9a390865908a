// Package usecase はニュースヘッドラインのセンチメント分析ロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"trading_backend/internal/feature/sentiment/domain/entity"
)

const (
	// DateLayout は履歴クエリの日付フォーマットです。
	DateLayout = "2006-01-02"
	// HistoricalArticleLimit は履歴センチメントで採点する記事数の上限です。
	HistoricalArticleLimit = 10
)

var (
	ErrInvalidDate   = errors.New("date must be formatted as YYYY-MM-DD")
	ErrAssetRequired = errors.New("asset is required")
)

// HeadlineSource はニュースヘッドラインを取得する外部APIを抽象化します。
type HeadlineSource interface {
	// Latest は直近のヘッドラインを返します。assetが空の場合はビジネスのトップニュースです。
	Latest(ctx context.Context, asset string) ([]entity.Article, error)
	// OnDate は指定日に公開されたassetに関するヘッドラインを返します。
	OnDate(ctx context.Context, date time.Time, asset string) ([]entity.Article, error)
}

// Scorer はテキストの極性を [-1, 1] で返します。
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Thresholds は判定の閾値です。
type Thresholds struct {
	Bullish float64
	Bearish float64
}

type SentimentUsecase struct {
	source     HeadlineSource
	scorer     Scorer
	thresholds Thresholds
}

func NewSentimentUsecase(source HeadlineSource, scorer Scorer, th Thresholds) *SentimentUsecase {
	return &SentimentUsecase{source: source, scorer: scorer, thresholds: th}
}

// Thresholds returns the configured classification thresholds.
func (u *SentimentUsecase) Thresholds() Thresholds {
	return u.thresholds
}

// Current は直近のヘッドラインを採点し、平均値から市場のムードを判定します。
func (u *SentimentUsecase) Current(ctx context.Context, asset string) (entity.Reading, error) {
	asset = strings.TrimSpace(asset)
	articles, err := u.source.Latest(ctx, asset)
	if err != nil {
		return entity.Reading{}, fmt.Errorf("fetch headlines: %w", err)
	}
	if len(articles) == 0 {
		return entity.Reading{Score: 0, Label: entity.LabelNoNews, Articles: []entity.Article{}}, nil
	}
	return u.score(ctx, articles)
}

// Historical は指定日のヘッドラインのうち先頭の記事だけを採点します。
func (u *SentimentUsecase) Historical(ctx context.Context, date, asset string) (entity.Reading, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return entity.Reading{}, ErrInvalidDate
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return entity.Reading{}, ErrAssetRequired
	}

	articles, err := u.source.OnDate(ctx, day, asset)
	if err != nil {
		return entity.Reading{}, fmt.Errorf("fetch headlines for %s: %w", date, err)
	}
	if len(articles) == 0 {
		return entity.Reading{Score: 0, Label: entity.LabelNoArticles, Articles: []entity.Article{}}, nil
	}
	if len(articles) > HistoricalArticleLimit {
		articles = articles[:HistoricalArticleLimit]
	}
	return u.score(ctx, articles)
}

func (u *SentimentUsecase) score(ctx context.Context, articles []entity.Article) (entity.Reading, error) {
	out := make([]entity.Article, 0, len(articles))
	var sum float64
	for _, a := range articles {
		s, err := u.scorer.Score(ctx, a.Title)
		if err != nil {
			// 1件の採点失敗で全体を失敗させない
			zap.L().Warn("failed to score headline", zap.String("title", a.Title), zap.Error(err))
			s = 0
		}
		a.Sentiment = s
		sum += s
		out = append(out, a)
	}
	avg := sum / float64(len(out))
	return entity.Reading{
		Score:    avg,
		Label:    entity.Classify(avg, u.thresholds.Bullish, u.thresholds.Bearish),
		Articles: out,
	}, nil
}
