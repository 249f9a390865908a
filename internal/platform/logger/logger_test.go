package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"trading_backend/internal/platform/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantLevel zapcore.Level
	}{
		{"json debug", config.LogConfig{Level: "debug", Encoding: "json"}, zapcore.DebugLevel},
		{"console warn upper case", config.LogConfig{Level: "WARN", Encoding: "console"}, zapcore.WarnLevel},
		{"unknown level falls back to info", config.LogConfig{Level: "loud", Encoding: "json"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
