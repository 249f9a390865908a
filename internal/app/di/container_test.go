package di_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading_backend/internal/app/di"
	"trading_backend/internal/app/router"
	"trading_backend/internal/feature/sentiment/adapters/vader"
	"trading_backend/internal/platform/config"
	"trading_backend/internal/platform/db/dbtest"
)

const testSecret = "test-secret"

func newServer(t *testing.T) (*gin.Engine, *di.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.JWTSecret = testSecret
	cfg.Holidays.CacheDir = t.TempDir()

	db := dbtest.Open(t, di.Models()...)
	c, err := di.Build(context.Background(), cfg, db, nil)
	require.NoError(t, err)
	return router.NewRouter(c.Handlers, testSecret, c.Checks), c
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuild_PublicRoutes(t *testing.T) {
	r, _ := newServer(t)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", "", nil).Code)

	w := do(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestBuild_ProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/symbols"},
		{http.MethodGet, "/candles/SPY"},
		{http.MethodGet, "/candles/compare"},
		{http.MethodGet, "/sentiment"},
		{http.MethodGet, "/sentiment/history"},
		{http.MethodPost, "/backtests"},
		{http.MethodGet, "/backtests"},
		{http.MethodGet, "/backtests/abc"},
		{http.MethodGet, "/clock"},
		{http.MethodGet, "/market/status"},
		{http.MethodGet, "/market/holidays"},
		{http.MethodPost, "/market/holidays/refresh"},
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/settings"},
		{http.MethodPut, "/settings"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, do(t, r, rt.method, rt.path, "", nil).Code)
		})
	}
}

func TestBuild_SignupLoginFlow(t *testing.T) {
	r, c := newServer(t)
	ctx := context.Background()

	creds := map[string]string{"email": "trader@example.com", "password": "password123"}
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/signup", "", creds).Code)
	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/signup", "", creds).Code)

	w := do(t, r, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	require.NoError(t, c.Watchlist.EnsureDefaults(ctx, []string{"SPY", "GLD"}))
	w = do(t, r, http.MethodGet, "/symbols", tok.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"code":"SPY","name":"SPDR S&P 500 ETF","market":"NYSE Arca"},`+
		`{"code":"GLD","name":"SPDR Gold Shares","market":"NYSE Arca"}]`, w.Body.String())

	w = do(t, r, http.MethodGet, "/settings", tok.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings struct {
		PortfolioValue float64 `json:"portfolio_value"`
		Interval       string  `json:"interval"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.InDelta(t, 10000, settings.PortfolioValue, 1e-9)
	assert.Equal(t, "1day", settings.Interval)

	w = do(t, r, http.MethodPut, "/settings", tok.Token, map[string]any{"portfolio_value": 5000, "interval": "1week"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, "1week", settings.Interval)

	w = do(t, r, http.MethodGet, "/backtests", tok.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewScorer_DefaultsToVader(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	s, err := di.NewScorer(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &vader.Scorer{}, s)

	score, err := s.Score(context.Background(), "Stocks rally")
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
}
