// Package dto はsentimentフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import (
	"time"

	"trading_backend/internal/feature/sentiment/domain/entity"
)

type ArticleResponse struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt string  `json:"published_at,omitempty"`
	Sentiment   float64 `json:"sentiment"`
	Tone        string  `json:"tone"` // positive / negative / neutral
}

type SentimentResponse struct {
	Score    float64           `json:"score"`
	Label    string            `json:"label"`
	Articles []ArticleResponse `json:"articles"`
}

// FromReading はReadingをレスポンスに変換します。limitが正の場合は記事数を切り詰めます。
func FromReading(r entity.Reading, limit int) SentimentResponse {
	arts := r.Articles
	if limit > 0 && len(arts) > limit {
		arts = arts[:limit]
	}
	out := make([]ArticleResponse, 0, len(arts))
	for _, a := range arts {
		var published string
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, ArticleResponse{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			PublishedAt: published,
			Sentiment:   a.Sentiment,
			Tone:        string(entity.ToneOf(a.Sentiment)),
		})
	}
	return SentimentResponse{Score: r.Score, Label: string(r.Label), Articles: out}
}
