// Package handler はバックテストAPIのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"trading_backend/internal/api"
	candlesusecase "trading_backend/internal/feature/candles/usecase"
	"trading_backend/internal/feature/strategy/domain/entity"
	"trading_backend/internal/feature/strategy/transport/http/dto"
	"trading_backend/internal/feature/strategy/usecase"
	jwtmw "trading_backend/internal/platform/jwt"
)

type BacktestUsecase interface {
	Run(ctx context.Context, req usecase.RunRequest) (*usecase.RunOutput, error)
	Get(ctx context.Context, userID uint, id string) (*entity.Run, error)
	List(ctx context.Context, userID uint, limit int) ([]entity.Run, error)
}

type BacktestHandler struct {
	uc BacktestUsecase
}

func NewBacktestHandler(uc BacktestUsecase) *BacktestHandler {
	return &BacktestHandler{uc: uc}
}

// Run はバックテストを実行して結果を返します。
//
// POST /backtests
func (h *BacktestHandler) Run(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req dto.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.uc.Run(c.Request.Context(), req.ToRunRequest(userID))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			zap.L().Error("backtest failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.FromRunOutput(out))
}

// List は自分の実行履歴を新しい順に返します。
//
// GET /backtests?limit=20
func (h *BacktestHandler) List(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &limit); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	runs, err := h.uc.List(c.Request.Context(), userID, n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list backtests"})
		return
	}
	out := make([]dto.RunSummaryResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, dto.FromRunSummary(r))
	}
	c.JSON(http.StatusOK, out)
}

// Get は1件の実行結果を約定付きで返します。
//
// GET /backtests/:id
func (h *BacktestHandler) Get(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	run, err := h.uc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load backtest"})
		return
	}
	c.JSON(http.StatusOK, dto.FromRun(*run))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidPortfolio),
		errors.Is(err, usecase.ErrInvalidParams),
		errors.Is(err, candlesusecase.ErrInvalidInterval),
		errors.Is(err, candlesusecase.ErrSymbolRequired):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoOverlap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrPersist):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
