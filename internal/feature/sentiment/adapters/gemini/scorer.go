// Package gemini はGoogle Gemini APIを使用したヘッドラインの極性スコアラーを提供します。
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"google.golang.org/genai"

	"trading_backend/internal/feature/sentiment/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// PromptTemplate は極性スコアを1つの数値で返させるプロンプトです。
	PromptTemplate = "Rate the market sentiment of this financial news headline on a scale from -1 (very bearish) to 1 (very bullish). Reply with a single number only.\nHeadline: %s"
)

var number = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// generateFunc はプロンプトからテキストを生成します。
type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiScorer scores headlines by asking a Gemini model for a polarity.
type GeminiScorer struct {
	generate generateFunc
}

var _ usecase.Scorer = (*GeminiScorer)(nil)

// NewGeminiScorer はADCを使用してGeminiScorerを生成します。
// 環境変数 GOOGLE_API_KEY または GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiScorer(ctx context.Context, model string) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiScorer{generate: func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}}, nil
}

// Score はモデルの応答に含まれる最初の数値を [-1, 1] に丸めて返します。
func (g *GeminiScorer) Score(ctx context.Context, text string) (float64, error) {
	out, err := g.generate(ctx, fmt.Sprintf(PromptTemplate, text))
	if err != nil {
		return 0, fmt.Errorf("gemini API request failed: %w", err)
	}
	return parseScore(out)
}

func parseScore(s string) (float64, error) {
	m := number.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("gemini: no score in response %q", s)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("gemini: parse score %q: %w", m, err)
	}
	return max(-1, min(1, v)), nil
}
