package entity

import (
	"slices"
)

// Intervals は取得可能な時間足の一覧です。
var Intervals = []string{"1min", "5min", "15min", "30min", "1h", "1day", "1week", "1month"}

// IsValidInterval reports whether interval is supported by the market API.
func IsValidInterval(interval string) bool {
	return slices.Contains(Intervals, interval)
}

// OutputSizeForInterval は時間足に応じたチャート表示用の取得件数を返します。
// 短い足ほど多くの本数を取得します。
func OutputSizeForInterval(interval string) int {
	switch interval {
	case "1min", "5min":
		return 100
	case "15min", "30min", "1h":
		return 80
	default:
		return 60
	}
}

// SortChronological sorts candles oldest first in place.
func SortChronological(cs []Candle) {
	slices.SortStableFunc(cs, func(a, b Candle) int {
		return a.Time.Compare(b.Time)
	})
}

// LatestClose は最後の足の終値を返します。空の場合はfalseです。
func LatestClose(cs []Candle) (float64, bool) {
	if len(cs) == 0 {
		return 0, false
	}
	return cs[len(cs)-1].Close, true
}

// Normalize rebases closes so the first candle is 100.
// An empty series yields an empty result; a zero first close yields nil.
func Normalize(cs []Candle) []NormalizedPoint {
	if len(cs) == 0 {
		return []NormalizedPoint{}
	}
	base := cs[0].Close
	if base == 0 {
		return nil
	}
	out := make([]NormalizedPoint, 0, len(cs))
	for _, c := range cs {
		out = append(out, NormalizedPoint{
			Time:       c.Time,
			Close:      c.Close,
			Normalized: c.Close / base * 100,
		})
	}
	return out
}
