package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading_backend/internal/platform/config"
)

func newMarket(t *testing.T, h http.HandlerFunc) *TwelveDataMarket {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewTwelveDataMarket(Config{APIKey: "test-key", BaseURL: server.URL}, server.Client())
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ConfigFrom(config.TwelveDataConfig{APIKey: "k", BaseURL: "https://api.twelvedata.com", Timeout: 5 * time.Second})
	assert.Equal(t, Config{APIKey: "k", BaseURL: "https://api.twelvedata.com", Timeout: 5 * time.Second}, cfg)
}

func TestTwelveDataMarket_GetTimeSeries_Success(t *testing.T) {
	t.Parallel()

	market := newMarket(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/time_series", r.URL.Path)
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1day", r.URL.Query().Get("interval"))
		assert.Equal(t, "60", r.URL.Query().Get("outputsize"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		respond(`{
			"status": "ok",
			"meta": {"symbol": "SPY", "interval": "1day"},
			"values": [
				{"datetime": "2025-01-15", "open": "150.00", "high": "155.00", "low": "149.00", "close": "154.50", "volume": "1000000"},
				{"datetime": "2025-01-14 09:30:00", "open": "148.00", "high": "151.00", "low": "147.50", "close": "150.00", "volume": "900000"}
			]
		}`)(w, r)
	})

	candles, err := market.GetTimeSeries(context.Background(), "SPY", "1day", 60)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	// 昇順に並べ替えられている
	assert.Equal(t, time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC), candles[0].Time)
	assert.Equal(t, 150.00, candles[0].Close)
	assert.Equal(t, 154.50, candles[1].Close)
	assert.Equal(t, int64(1000000), candles[1].Volume)
	assert.Equal(t, "SPY", candles[0].Symbol)
	assert.Equal(t, "1day", candles[0].Interval)
}

func TestTwelveDataMarket_GetTimeSeries_MissingVolume(t *testing.T) {
	t.Parallel()

	market := newMarket(t, respond(`{"status":"ok","values":[
		{"datetime": "2025-01-15", "open": "1.1", "high": "1.2", "low": "1.0", "close": "1.15"}
	]}`))

	candles, err := market.GetTimeSeries(context.Background(), "EUR/USD", "1day", 10)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Zero(t, candles[0].Volume)
}

func TestTwelveDataMarket_GetTimeSeries_Errors(t *testing.T) {
	t.Parallel()

	value := func(open, high, low, close, volume string) string {
		return `{"status":"ok","values":[{"datetime":"2025-01-15","open":"` + open + `","high":"` + high +
			`","low":"` + low + `","close":"` + close + `","volume":"` + volume + `"}]}`
	}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name:    "http 401",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			wantErr: "twelvedata http 401",
		},
		{
			name:    "http 503",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			wantErr: "twelvedata http 503",
		},
		{
			name:    "api error",
			handler: respond(`{"status":"error","code":401,"message":"Invalid API key"}`),
			wantErr: "twelvedata: Invalid API key",
		},
		{
			name:    "invalid json",
			handler: respond(`{invalid json`),
			wantErr: "invalid character",
		},
		{
			name:    "invalid datetime",
			handler: respond(`{"status":"ok","values":[{"datetime":"invalid-date","open":"1","high":"1","low":"1","close":"1"}]}`),
			wantErr: "parse time",
		},
		{name: "invalid open", handler: respond(value("abc", "1", "1", "1", "1")), wantErr: "parse open"},
		{name: "invalid high", handler: respond(value("1", "xyz", "1", "1", "1")), wantErr: "parse high"},
		{name: "invalid low", handler: respond(value("1", "1", "bad", "1", "1")), wantErr: "parse low"},
		{name: "invalid close", handler: respond(value("1", "1", "1", "bad", "1")), wantErr: "parse close"},
		{name: "invalid volume", handler: respond(value("1", "1", "1", "1", "n/a")), wantErr: "parse volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			market := newMarket(t, tt.handler)
			_, err := market.GetTimeSeries(context.Background(), "SPY", "1day", 100)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTwelveDataMarket_GetTimeSeries_EmptyValues(t *testing.T) {
	t.Parallel()

	market := newMarket(t, respond(`{"status":"ok","values":[]}`))

	candles, err := market.GetTimeSeries(context.Background(), "SPY", "1day", 100)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestTwelveDataMarket_GetTimeSeries_ContextCancellation(t *testing.T) {
	t.Parallel()

	market := newMarket(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(200 * time.Millisecond):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := market.GetTimeSeries(ctx, "SPY", "1day", 100)
	assert.Error(t, err)
}
