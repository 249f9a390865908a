package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candleentity "trading_backend/internal/feature/candles/domain/entity"
	"trading_backend/internal/feature/dashboard/domain/entity"
	"trading_backend/internal/feature/dashboard/transport/http/dto"
	"trading_backend/internal/feature/dashboard/usecase"
	marketusecase "trading_backend/internal/feature/marketclock/usecase"
	sentimententity "trading_backend/internal/feature/sentiment/domain/entity"
	jwtmw "trading_backend/internal/platform/jwt"
)

type mockDashboardUsecase struct {
	OverviewFunc       func(ctx context.Context, userID uint) (*usecase.Overview, error)
	GetSettingsFunc    func(ctx context.Context, userID uint) (entity.Settings, error)
	UpdateSettingsFunc func(ctx context.Context, userID uint, portfolioValue float64, interval string) (entity.Settings, error)
}

func (m *mockDashboardUsecase) Overview(ctx context.Context, userID uint) (*usecase.Overview, error) {
	if m.OverviewFunc != nil {
		return m.OverviewFunc(ctx, userID)
	}
	return nil, errors.New("OverviewFunc is not implemented")
}

func (m *mockDashboardUsecase) GetSettings(ctx context.Context, userID uint) (entity.Settings, error) {
	if m.GetSettingsFunc != nil {
		return m.GetSettingsFunc(ctx, userID)
	}
	return entity.Settings{}, errors.New("GetSettingsFunc is not implemented")
}

func (m *mockDashboardUsecase) UpdateSettings(ctx context.Context, userID uint, portfolioValue float64, interval string) (entity.Settings, error) {
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(ctx, userID, portfolioValue, interval)
	}
	return entity.Settings{}, errors.New("UpdateSettingsFunc is not implemented")
}

var limits = entity.Limits{DefaultPortfolioValue: 10000, MinPortfolioValue: 100, MaxPortfolioValue: 10000, DefaultInterval: "1day"}

func setupRouter(uc DashboardUsecase, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(jwtmw.ContextUserID, userID)
		}
		c.Next()
	})
	h := NewDashboardHandler(uc, limits, 2)
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	return r
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	price := 110.0
	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }
	uc := &mockDashboardUsecase{OverviewFunc: func(_ context.Context, userID uint) (*usecase.Overview, error) {
		assert.Equal(t, uint(4), userID)
		return &usecase.Overview{
			Settings:   limits.Default(userID),
			OutputSize: 60,
			Symbols: []usecase.SymbolOverview{
				{
					Symbol: "SPY", Available: true, CurrentPrice: &price,
					Candles:    []candleentity.Candle{{Time: day(1), Close: 100}, {Time: day(2), Close: 110}},
					Normalized: []candleentity.NormalizedPoint{{Time: day(1), Close: 100, Normalized: 100}, {Time: day(2), Close: 110, Normalized: 110}},
				},
				{Symbol: "GLD", Error: "twelvedata http 429"},
			},
			Sentiment: &sentimententity.Reading{Score: 0.2, Label: sentimententity.LabelBullish, Articles: []sentimententity.Article{
				{Title: "a"}, {Title: "b"}, {Title: "c"},
			}},
			Market: usecase.MarketOverview{
				Now:       time.Date(2025, 4, 17, 10, 0, 0, 0, time.UTC),
				Status:    marketusecase.StatusOpen,
				Countdown: marketusecase.Countdown{Duration: time.Hour, Label: marketusecase.LabelClosesIn, Message: "1h 0m 0s"},
				Source:    marketusecase.Source{Kind: marketusecase.SourceCalculated},
			},
		}, nil
	}}
	r := setupRouter(uc, 4)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body dto.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Symbols, 2)
	assert.Equal(t, "2025-04-02", body.Symbols[0].Candles[1].Time)
	require.NotNil(t, body.Symbols[0].CurrentPrice)
	assert.Equal(t, 110.0, *body.Symbols[0].CurrentPrice)
	assert.False(t, body.Symbols[1].Available)
	assert.Nil(t, body.Symbols[1].CurrentPrice)
	assert.Empty(t, body.Symbols[1].Candles)
	require.NotNil(t, body.Sentiment)
	assert.Len(t, body.Sentiment.Articles, 2)
	assert.Equal(t, marketusecase.StatusOpen, body.Market.Status)
	assert.Equal(t, int64(3600), body.Market.Countdown.Seconds)
	assert.Equal(t, 10000.0, body.Settings.PortfolioValue)
	assert.Equal(t, entity.SidebarIntervals, body.Settings.Intervals)

	// JSON上でcurrent_priceがnullとして出力される
	assert.Contains(t, w.Body.String(), `"current_price":null`)
}

func TestDashboardHandler_GetDashboard_Errors(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		r := setupRouter(&mockDashboardUsecase{}, 0)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("usecase error", func(t *testing.T) {
		r := setupRouter(&mockDashboardUsecase{}, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDashboardHandler_GetSettings(t *testing.T) {
	uc := &mockDashboardUsecase{GetSettingsFunc: func(_ context.Context, userID uint) (entity.Settings, error) {
		return entity.Settings{UserID: userID, PortfolioValue: 750, Interval: "1h"}, nil
	}}
	r := setupRouter(uc, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.SettingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 750.0, body.PortfolioValue)
	assert.Equal(t, "1h", body.Interval)
	assert.Equal(t, dto.RangeResponse{Min: 100, Max: 10000}, body.Limits)
}

func TestDashboardHandler_UpdateSettings(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ucErr      error
		wantStatus int
	}{
		{name: "success", body: `{"portfolio_value":2500,"interval":"15min"}`, wantStatus: http.StatusOK},
		{name: "missing interval", body: `{"portfolio_value":2500}`, wantStatus: http.StatusBadRequest},
		{name: "out of range", body: `{"portfolio_value":99999,"interval":"1day"}`, ucErr: fmt.Errorf("%w: too big", entity.ErrPortfolioOutOfRange), wantStatus: http.StatusBadRequest},
		{name: "bad interval", body: `{"portfolio_value":2500,"interval":"2h"}`, ucErr: entity.ErrInvalidInterval, wantStatus: http.StatusBadRequest},
		{name: "db failure", body: `{"portfolio_value":2500,"interval":"1day"}`, ucErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockDashboardUsecase{UpdateSettingsFunc: func(_ context.Context, userID uint, v float64, interval string) (entity.Settings, error) {
				if tt.ucErr != nil {
					return entity.Settings{}, tt.ucErr
				}
				return entity.Settings{UserID: userID, PortfolioValue: v, Interval: interval}, nil
			}}
			r := setupRouter(uc, 1)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"interval":"15min"`)
			}
		})
	}
}
