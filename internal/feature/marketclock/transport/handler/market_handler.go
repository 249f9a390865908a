// Package handler はmarketclockフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"trading_backend/internal/api"
	"trading_backend/internal/feature/marketclock/domain/calendar"
	"trading_backend/internal/feature/marketclock/transport/http/dto"
	"trading_backend/internal/feature/marketclock/usecase"
)

const (
	upcomingCount = 2
	minYear       = 1900
	maxYear       = 2100
)

type CalendarUsecase interface {
	Now() time.Time
	WorldClock() []calendar.CityTime
	Status(ctx context.Context) string
	Countdown(ctx context.Context) usecase.Countdown
	Upcoming(ctx context.Context, n int) []usecase.Holiday
	Holidays(ctx context.Context, year int) calendar.Holidays
	Refresh(ctx context.Context) error
	Source(year int) usecase.Source
}

type MarketHandler struct {
	uc CalendarUsecase
}

func NewMarketHandler(uc CalendarUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// GetClock は主要都市の現在時刻を返します。
//
// GET /clock
func (h *MarketHandler) GetClock(c *gin.Context) {
	cities := h.uc.WorldClock()
	out := make([]dto.CityTimeResponse, 0, len(cities))
	for _, ct := range cities {
		out = append(out, dto.CityTimeResponse{City: ct.City, Zone: ct.Zone, Time: ct.Time})
	}
	c.JSON(http.StatusOK, out)
}

// GetStatus は開場状況、カウントダウン、直近の休場日を返します。
//
// GET /market/status
func (h *MarketHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.uc.Now()
	c.JSON(http.StatusOK, ToStatusResponse(now, h.uc.Status(ctx), h.uc.Countdown(ctx), h.uc.Upcoming(ctx, upcomingCount), h.uc.Source(now.Year())))
}

// ToStatusResponse is shared with the dashboard overview.
func ToStatusResponse(now time.Time, status string, cd usecase.Countdown, upcoming []usecase.Holiday, src usecase.Source) dto.MarketStatusResponse {
	resp := dto.MarketStatusResponse{
		Now:    now.Format(time.RFC3339),
		Status: status,
		Countdown: dto.CountdownResponse{
			Label:   cd.Label,
			Message: cd.Message,
			Seconds: int64(cd.Duration / time.Second),
		},
		Upcoming: make([]dto.HolidayResponse, 0, len(upcoming)),
		Source:   toSource(src),
	}
	for _, hd := range upcoming {
		days := hd.DaysUntil
		resp.Upcoming = append(resp.Upcoming, dto.HolidayResponse{
			Date:      hd.Date.Format(calendar.DateLayout),
			Weekday:   hd.Date.Weekday().String(),
			Name:      hd.Name,
			DaysUntil: &days,
		})
	}
	return resp
}

// GetHolidays は指定年（既定は今年）の休場日を日付順に返します。
//
// GET /market/holidays?year=2025
func (h *MarketHandler) GetHolidays(c *gin.Context) {
	var yearParam *int
	if err := runtime.BindQueryParameter("form", true, false, "year", c.Request.URL.Query(), &yearParam); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	year := h.uc.Now().Year()
	if yearParam != nil {
		year = *yearParam
	}
	if year < minYear || year > maxYear {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "year out of range"})
		return
	}

	hols := h.uc.Holidays(c.Request.Context(), year)
	out := dto.HolidaysResponse{
		Year:     year,
		Source:   toSource(h.uc.Source(year)),
		Holidays: make([]dto.HolidayResponse, 0, len(hols)),
	}
	for _, k := range hols.SortedKeys() {
		hr := dto.HolidayResponse{Date: k, Name: hols[k]}
		if d, err := time.Parse(calendar.DateLayout, k); err == nil {
			hr.Weekday = d.Weekday().String()
		}
		out.Holidays = append(out.Holidays, hr)
	}
	c.JSON(http.StatusOK, out)
}

// RefreshHolidays はキャッシュを破棄して休場日を再取得します。
//
// POST /market/holidays/refresh
func (h *MarketHandler) RefreshHolidays(c *gin.Context) {
	if err := h.uc.Refresh(c.Request.Context()); err != nil {
		zap.L().Error("holiday refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to refresh holiday data"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Holiday data refreshed!"})
}

func toSource(s usecase.Source) dto.SourceResponse {
	out := dto.SourceResponse{Kind: s.Kind}
	if !s.UpdatedAt.IsZero() {
		out.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return out
}
