// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"trading_backend/internal/api"
	"trading_backend/internal/feature/candles/domain/entity"
	"trading_backend/internal/feature/candles/transport/http/dto"
	"trading_backend/internal/feature/candles/usecase"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	Compare(ctx context.Context, symbols []string, interval string, outputsize int) ([]entity.Comparison, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc             CandlesUsecase
	defaultSymbols []string
}

// NewCandlesHandler はCandlesHandlerを生成します。defaultSymbolsは比較APIで銘柄が未指定の場合に使います。
func NewCandlesHandler(uc CandlesUsecase, defaultSymbols []string) *CandlesHandler {
	return &CandlesHandler{uc: uc, defaultSymbols: defaultSymbols}
}

// GetCandlesHandler は銘柄コードと時間間隔を受け取り、ローソク足データをJSONで返します。
//
// エンドポイント例:
// GET /candles/:code?interval=1day&outputsize=200
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	interval := c.DefaultQuery("interval", usecase.DefaultInterval)
	outputsize, _ := strconv.Atoi(c.DefaultQuery("outputsize", strconv.Itoa(usecase.DefaultOutputSize)))

	candles, err := h.uc.GetCandles(c.Request.Context(), code, interval, outputsize)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FromCandles(candles, interval))
}

// CompareHandler は複数銘柄の終値を先頭=100に正規化して返します。
//
// GET /candles/compare?symbols=SPY,GLD&interval=1day&outputsize=60
func (h *CandlesHandler) CompareHandler(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		symbols = h.defaultSymbols
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbols is required"})
		return
	}
	interval := c.DefaultQuery("interval", usecase.DefaultInterval)
	outputsize, _ := strconv.Atoi(c.Query("outputsize"))
	if outputsize <= 0 {
		outputsize = entity.OutputSizeForInterval(interval)
	}

	cmp, err := h.uc.Compare(c.Request.Context(), symbols, interval, outputsize)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.ComparisonResponse, 0, len(cmp))
	for _, s := range cmp {
		pts := make([]dto.NormalizedPointResponse, 0, len(s.Points))
		for _, p := range s.Points {
			pts = append(pts, dto.NormalizedPointResponse{
				Time:       dto.FormatTime(p.Time, interval),
				Close:      p.Close,
				Normalized: p.Normalized,
			})
		}
		out = append(out, dto.ComparisonResponse{Symbol: s.Symbol, Points: pts})
	}
	c.JSON(http.StatusOK, out)
}

func statusFor(err error) int {
	if errors.Is(err, usecase.ErrInvalidInterval) || errors.Is(err, usecase.ErrSymbolRequired) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
