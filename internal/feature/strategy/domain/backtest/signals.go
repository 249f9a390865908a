package backtest

import (
	"slices"
	"time"
)

const dayLayout = "2006-01-02"

// SignalSource は銘柄・日ごとのセンチメントスコアを返します。
type SignalSource interface {
	Sentiment(symbol string, day time.Time) float64
}

var (
	cycleA = [5]float64{-0.2, -0.2, 0.2, 0.2, 0.0}
	cycleB = [5]float64{0.2, 0.2, -0.2, -0.2, 0.0}
)

// CycleSignals は5営業日周期で強気と弱気を交互に繰り返す模擬シグナルです。
// バスケットの偶数番目の銘柄はパターンA、奇数番目はパターンBに従います。
type CycleSignals struct {
	position map[string]int
	dayIndex map[string]int
}

// NewCycleSignals builds the simulation over the distinct calendar days of times.
func NewCycleSignals(symbols []string, times []time.Time) *CycleSignals {
	pos := make(map[string]int, len(symbols))
	for i, s := range symbols {
		pos[s] = i
	}
	days := make([]string, 0, len(times))
	for _, t := range times {
		days = append(days, t.Format(dayLayout))
	}
	slices.Sort(days)
	days = slices.Compact(days)

	idx := make(map[string]int, len(days))
	for i, d := range days {
		idx[d] = i
	}
	return &CycleSignals{position: pos, dayIndex: idx}
}

func (c *CycleSignals) Sentiment(symbol string, day time.Time) float64 {
	i, ok := c.dayIndex[day.Format(dayLayout)]
	if !ok {
		return 0
	}
	p, ok := c.position[symbol]
	if !ok {
		return 0
	}
	if p%2 == 0 {
		return cycleA[i%5]
	}
	return cycleB[i%5]
}

// HistoricalSignals は実際のニュースから算出した日次スコアです。欠損日は0です。
type HistoricalSignals struct {
	scores map[string]map[string]float64
}

func NewHistoricalSignals() *HistoricalSignals {
	return &HistoricalSignals{scores: map[string]map[string]float64{}}
}

// Set records the score of symbol on day.
func (h *HistoricalSignals) Set(symbol string, day time.Time, score float64) {
	m, ok := h.scores[symbol]
	if !ok {
		m = map[string]float64{}
		h.scores[symbol] = m
	}
	m[day.Format(dayLayout)] = score
}

func (h *HistoricalSignals) Sentiment(symbol string, day time.Time) float64 {
	return h.scores[symbol][day.Format(dayLayout)]
}

// TradingDays returns the sorted distinct calendar days of times.
func TradingDays(times []time.Time) []time.Time {
	seen := map[string]struct{}{}
	var out []time.Time
	for _, t := range times {
		k := t.Format(dayLayout)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}
