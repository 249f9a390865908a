// Package dto はcandlesフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import (
	"time"

	"trading_backend/internal/feature/candles/domain/entity"
)

// CandleResponse はロウソク足データのレスポンスDTOです。
type CandleResponse struct {
	Time   string  `json:"time"`   // 日付（日中足は時刻付き）
	Open   float64 `json:"open"`   // 始値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Close  float64 `json:"close"`  // 終値
	Volume int64   `json:"volume"` // 出来高
}

// NormalizedPointResponse は正規化された終値の1点です。
type NormalizedPointResponse struct {
	Time       string  `json:"time"`
	Close      float64 `json:"close"`
	Normalized float64 `json:"normalized"`
}

type ComparisonResponse struct {
	Symbol string                    `json:"symbol"`
	Points []NormalizedPointResponse `json:"points"`
}

// FormatTime は日足以上なら日付のみ、日中足なら時刻付きで整形します。
func FormatTime(t time.Time, interval string) string {
	switch interval {
	case "1min", "5min", "15min", "30min", "1h":
		return t.UTC().Format("2006-01-02 15:04:05")
	default:
		return t.UTC().Format("2006-01-02")
	}
}

func FromCandles(cs []entity.Candle, interval string) []CandleResponse {
	out := make([]CandleResponse, 0, len(cs))
	for _, x := range cs {
		out = append(out, CandleResponse{
			Time:   FormatTime(x.Time, interval),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
		})
	}
	return out
}
