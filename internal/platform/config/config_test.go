package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 11.75, cfg.Trading.TakeProfitPct)
	assert.Equal(t, 4.25, cfg.Trading.StopLossPct)
	assert.Equal(t, 1000000.0, cfg.Trading.DefaultPortfolioValue)
	assert.Equal(t, 0.05, cfg.Sentiment.BullishThreshold)
	assert.Equal(t, -0.3, cfg.Sentiment.BearishThreshold)
	assert.Equal(t, "vader", cfg.Sentiment.Scorer)
	assert.Equal(t, []string{"SPY", "GLD"}, cfg.Dashboard.Symbols)
	assert.Equal(t, 5*time.Minute, cfg.Cache.MarketTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.HistoryTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.IntradayRefresh)
	assert.Equal(t, 8, cfg.TwelveData.RequestsPerMinute)

	assert.Equal(t, [4]int{9, 30, 16, 0}, [4]int{
		cfg.Clock.MarketOpenHour, cfg.Clock.MarketOpenMinute,
		cfg.Clock.MarketCloseHour, cfg.Clock.MarketCloseMinute,
	})
	require.Len(t, cfg.Clock.Cities, 6)
	assert.Equal(t, City{Name: "New York", Zone: "America/New_York"}, cfg.Clock.Cities[0])
	assert.Equal(t, City{Name: "Tokyo", Zone: "Asia/Tokyo"}, cfg.Clock.Cities[2])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRADER_TWELVEDATA_API_KEY", "td-key")
	t.Setenv("TRADER_SENTIMENT_SCORER", "gemini")
	t.Setenv("TRADER_DASHBOARD_SYMBOLS", "SPY,GLD,QQQ")
	t.Setenv("TRADER_TRADING_STOP_LOSS_PCT", "2.25")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "td-key", cfg.TwelveData.APIKey)
	assert.Equal(t, "gemini", cfg.Sentiment.Scorer)
	assert.Equal(t, []string{"SPY", "GLD", "QQQ"}, cfg.Dashboard.Symbols)
	assert.Equal(t, 2.25, cfg.Trading.StopLossPct)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
server:
  http_addr: ":9090"
db:
  driver: postgres
  host: db.internal
clock:
  cities:
    - name: Frankfurt
      zone: Europe/Berlin
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, []City{{Name: "Frankfurt", Zone: "Europe/Berlin"}}, cfg.Clock.Cities)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown db driver", func(c *Config) { c.DB.Driver = "mysql" }},
		{"unknown scorer", func(c *Config) { c.Sentiment.Scorer = "textblob" }},
		{"negative reserve", func(c *Config) { c.Trading.ReservePerAsset = -1 }},
		{"bearish above bullish", func(c *Config) { c.Sentiment.BearishThreshold = 0.5 }},
		{"no dashboard symbols", func(c *Config) { c.Dashboard.Symbols = nil }},
		{"max portfolio below min", func(c *Config) { c.Dashboard.MaxPortfolioValue = 50 }},
		{"open hour out of range", func(c *Config) { c.Clock.MarketOpenHour = 25 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
