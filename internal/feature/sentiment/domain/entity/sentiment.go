// Package entity defines the domain models for the sentiment feature.
package entity

import "time"

// Label はセンチメント判定の結果ラベルです。
type Label string

const (
	LabelBullish    Label = "Bullish"
	LabelBearish    Label = "Bearish"
	LabelNeutral    Label = "Neutral"
	LabelNoNews     Label = "No news available"
	LabelNoArticles Label = "No articles found for that date/asset."
)

// Article is a scored news headline.
type Article struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Sentiment   float64
}

// Reading はヘッドライン群の平均スコアと判定結果です。
type Reading struct {
	Score    float64
	Label    Label
	Articles []Article
}

// Classify maps an average polarity onto a label. Scores strictly above
// bullish are Bullish, strictly below bearish are Bearish.
func Classify(avg, bullish, bearish float64) Label {
	switch {
	case avg > bullish:
		return LabelBullish
	case avg < bearish:
		return LabelBearish
	default:
		return LabelNeutral
	}
}

// Tone はヘッドライン表示用の色分けです。
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// toneBand は色分けの閾値です。
const toneBand = 0.3

func ToneOf(score float64) Tone {
	switch {
	case score > toneBand:
		return TonePositive
	case score < -toneBand:
		return ToneNegative
	default:
		return ToneNeutral
	}
}
