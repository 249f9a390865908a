// Package handler はsentimentフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"trading_backend/internal/api"
	"trading_backend/internal/feature/sentiment/domain/entity"
	"trading_backend/internal/feature/sentiment/transport/http/dto"
	"trading_backend/internal/feature/sentiment/usecase"
)

// DefaultHeadlineLimit はレスポンスに含める記事数のデフォルトです。
const DefaultHeadlineLimit = 5

// SentimentUsecase はハンドラーが利用するユースケースです。
type SentimentUsecase interface {
	Current(ctx context.Context, asset string) (entity.Reading, error)
	Historical(ctx context.Context, date, asset string) (entity.Reading, error)
}

type SentimentHandler struct {
	uc    SentimentUsecase
	limit int
}

// NewSentimentHandler は記事数のデフォルト上限を指定してハンドラーを生成します。
func NewSentimentHandler(uc SentimentUsecase, defaultLimit int) *SentimentHandler {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHeadlineLimit
	}
	return &SentimentHandler{uc: uc, limit: defaultLimit}
}

type currentParams struct {
	Asset *string
	Limit *int
}

// GetCurrent は直近ヘッドラインのセンチメントを返します。
//
// GET /sentiment?asset=SPY&limit=5
func (h *SentimentHandler) GetCurrent(c *gin.Context) {
	var p currentParams
	q := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "asset", q, &p.Asset); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be an integer"})
		return
	}

	asset := ""
	if p.Asset != nil {
		asset = *p.Asset
	}
	limit := h.limit
	if p.Limit != nil && *p.Limit > 0 {
		limit = *p.Limit
	}

	reading, err := h.uc.Current(c.Request.Context(), asset)
	if err != nil {
		zap.L().Warn("sentiment lookup failed", zap.String("asset", asset), zap.Error(err))
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromReading(reading, limit))
}

// GetHistorical は指定日のセンチメントを返します。
//
// GET /sentiment/history?date=2024-01-02&asset=SPY
func (h *SentimentHandler) GetHistorical(c *gin.Context) {
	reading, err := h.uc.Historical(c.Request.Context(), c.Query("date"), c.Query("asset"))
	switch {
	case errors.Is(err, usecase.ErrInvalidDate), errors.Is(err, usecase.ErrAssetRequired):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		zap.L().Warn("historical sentiment lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromReading(reading, 0))
}
