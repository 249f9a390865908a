// Package vader はVADERの複合スコアでヘッドラインの極性を算出するスコアラーを提供します。
package vader

import (
	"context"
	"strings"

	"github.com/jonreiter/govader"

	"trading_backend/internal/feature/sentiment/usecase"
)

// financeTerms はVADER辞書に追加・上書きする値動きの語です。尺度は辞書と同じ -4〜4 です。
var financeTerms = map[string]float64{
	"rally": 2.0, "rallies": 2.0, "rallied": 2.0,
	"surge": 2.2, "surges": 2.2, "surged": 2.2,
	"soar": 2.5, "soars": 2.5, "soared": 2.5,
	"jump": 1.5, "jumps": 1.5, "jumped": 1.5,
	"climb": 1.3, "climbs": 1.3, "climbed": 1.3,
	"rise": 1.2, "rises": 1.2, "rose": 1.2, "rising": 1.2,
	"rebound": 1.6, "rebounds": 1.6, "rebounded": 1.6,
	"higher": 1.0, "beat": 1.5, "beats": 1.5,
	"outperform": 1.8, "outperforms": 1.8,
	"upgrade": 1.8, "upgrades": 1.8, "upgraded": 1.8,
	"bullish": 2.2,

	"fall": -1.3, "falls": -1.3, "fell": -1.3, "falling": -1.3,
	"drops": -1.1, "dropped": -1.1,
	"decline": -1.3, "declines": -1.3, "declined": -1.3,
	"sink": -1.6, "sinks": -1.6, "sank": -1.6,
	"slide": -1.3, "slides": -1.3, "slid": -1.3,
	"slump": -2.0, "slumps": -2.0, "slumped": -2.0,
	"tumble": -2.0, "tumbles": -2.0, "tumbled": -2.0,
	"plunge": -2.5, "plunges": -2.5, "plunged": -2.5,
	"selloff": -2.0, "sell-off": -2.0,
	"downgrade": -1.8, "downgrades": -1.8, "downgraded": -1.8,
	"bearish": -2.2, "layoffs": -1.9, "slowdown": -1.5,
	"tariff": -1.0, "tariffs": -1.0,
}

// neutralTerms は一般文では極性を持つが、金融ニュースでは名詞として使われる語です。
var neutralTerms = []string{
	"share", "shares", "interest", "interests", "credit",
	"security", "securities", "gross", "crude", "demand",
}

// Scorer はgovaderの複合スコア（-1〜1）を返すオフラインのスコアラーです。
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

var _ usecase.Scorer = (*Scorer)(nil)

// NewScorer は辞書を読み込み、金融向けの語を反映したScorerを返します。
func NewScorer() *Scorer {
	a := govader.NewSentimentIntensityAnalyzer()
	for w, v := range financeTerms {
		a.Lexicon[w] = v
	}
	for _, w := range neutralTerms {
		delete(a.Lexicon, w)
	}
	return &Scorer{analyzer: a}
}

func (s *Scorer) Score(_ context.Context, text string) (float64, error) {
	// 否定の短縮形を辞書の表記にそろえる
	text = strings.TrimSpace(strings.ReplaceAll(text, "’", "'"))
	if text == "" {
		return 0, nil
	}
	return s.analyzer.PolarityScores(text).Compound, nil
}
