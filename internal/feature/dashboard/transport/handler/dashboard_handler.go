// Package handler はダッシュボードAPIのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading_backend/internal/api"
	candledto "trading_backend/internal/feature/candles/transport/http/dto"
	"trading_backend/internal/feature/dashboard/domain/entity"
	"trading_backend/internal/feature/dashboard/transport/http/dto"
	"trading_backend/internal/feature/dashboard/usecase"
	markethandler "trading_backend/internal/feature/marketclock/transport/handler"
	sentimentdto "trading_backend/internal/feature/sentiment/transport/http/dto"
	jwtmw "trading_backend/internal/platform/jwt"
)

type DashboardUsecase interface {
	Overview(ctx context.Context, userID uint) (*usecase.Overview, error)
	GetSettings(ctx context.Context, userID uint) (entity.Settings, error)
	UpdateSettings(ctx context.Context, userID uint, portfolioValue float64, interval string) (entity.Settings, error)
}

type DashboardHandler struct {
	uc           DashboardUsecase
	limits       entity.Limits
	headlineSize int
}

// NewDashboardHandler はDashboardHandlerを生成します。headlineSizeは表示するニュースの件数です。
func NewDashboardHandler(uc DashboardUsecase, limits entity.Limits, headlineSize int) *DashboardHandler {
	return &DashboardHandler{uc: uc, limits: limits, headlineSize: headlineSize}
}

// GetDashboard は価格、センチメント、市場状況をまとめて返します。
//
// GET /dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	ov, err := h.uc.Overview(c.Request.Context(), userID)
	if err != nil {
		zap.L().Error("dashboard overview failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load dashboard"})
		return
	}

	resp := dto.DashboardResponse{
		Settings:       h.settingsResponse(ov.Settings),
		OutputSize:     ov.OutputSize,
		Symbols:        make([]dto.SymbolResponse, 0, len(ov.Symbols)),
		SentimentError: ov.SentimentError,
		Market: markethandler.ToStatusResponse(
			ov.Market.Now, ov.Market.Status, ov.Market.Countdown, ov.Market.Upcoming, ov.Market.Source),
	}
	for _, s := range ov.Symbols {
		sr := dto.SymbolResponse{
			Symbol:       s.Symbol,
			Available:    s.Available,
			Error:        s.Error,
			CurrentPrice: s.CurrentPrice,
			Candles:      candledto.FromCandles(s.Candles, ov.Settings.Interval),
			Normalized:   make([]candledto.NormalizedPointResponse, 0, len(s.Normalized)),
		}
		for _, p := range s.Normalized {
			sr.Normalized = append(sr.Normalized, candledto.NormalizedPointResponse{
				Time:       candledto.FormatTime(p.Time, ov.Settings.Interval),
				Close:      p.Close,
				Normalized: p.Normalized,
			})
		}
		resp.Symbols = append(resp.Symbols, sr)
	}
	if ov.Sentiment != nil {
		sr := sentimentdto.FromReading(*ov.Sentiment, h.headlineSize)
		resp.Sentiment = &sr
	}
	c.JSON(http.StatusOK, resp)
}

// GetSettings は現在の設定を返します。
//
// GET /settings
func (h *DashboardHandler) GetSettings(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	s, err := h.uc.GetSettings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, h.settingsResponse(s))
}

// UpdateSettings はポートフォリオ額と時間足を保存します。
//
// PUT /settings
func (h *DashboardHandler) UpdateSettings(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	s, err := h.uc.UpdateSettings(c.Request.Context(), userID, req.PortfolioValue, req.Interval)
	if err != nil {
		if errors.Is(err, entity.ErrPortfolioOutOfRange) || errors.Is(err, entity.ErrInvalidInterval) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, h.settingsResponse(s))
}

func (h *DashboardHandler) settingsResponse(s entity.Settings) dto.SettingsResponse {
	return dto.SettingsResponse{
		PortfolioValue: s.PortfolioValue,
		Interval:       s.Interval,
		Intervals:      entity.SidebarIntervals,
		Limits:         dto.RangeResponse{Min: h.limits.MinPortfolioValue, Max: h.limits.MaxPortfolioValue},
	}
}
