package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiScorer_Score(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		genErr   error
		want     float64
		wantErr  string
	}{
		{name: "plain number", response: "0.45", want: 0.45},
		{name: "negative with text", response: "Score: -0.7 (bearish)", want: -0.7},
		{name: "leading dot", response: ".5", want: 0.5},
		{name: "clamped high", response: "3", want: 1},
		{name: "clamped low", response: "-12.5", want: -1},
		{name: "no number", response: "neutral", wantErr: "no score"},
		{name: "api error", genErr: errors.New("quota exceeded"), wantErr: "gemini API request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var prompt string
			g := &GeminiScorer{generate: func(ctx context.Context, p string) (string, error) {
				prompt = p
				return tt.response, tt.genErr
			}}

			got, err := g.Score(context.Background(), "Stocks rally on jobs data")
			assert.True(t, strings.HasSuffix(prompt, "Headline: Stocks rally on jobs data"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
