// Package entity defines the domain models for the candles feature.
package entity

import "time"

// Candle はある銘柄・時間足における1本分のOHLCVデータです。
type Candle struct {
	Symbol   string    // ティッカー（例: "SPY", "GLD"）
	Interval string    // 時間足（例: "1day", "1h"）
	Time     time.Time // 足の開始時刻
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
}

// NormalizedPoint は先頭の終値を100とした相対値です。
type NormalizedPoint struct {
	Time       time.Time
	Close      float64
	Normalized float64
}

// Comparison は1銘柄分の正規化系列です。
type Comparison struct {
	Symbol string
	Points []NormalizedPoint
}
