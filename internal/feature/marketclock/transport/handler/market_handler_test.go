package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading_backend/internal/feature/marketclock/domain/calendar"
	"trading_backend/internal/feature/marketclock/transport/http/dto"
	"trading_backend/internal/feature/marketclock/usecase"
)

// failingRefresh はRefreshだけ失敗させるラッパーです。
type failingRefresh struct {
	*usecase.CalendarUsecase
}

func (failingRefresh) Refresh(context.Context) error { return errors.New("disk full") }

func newUsecase(t *testing.T) *usecase.CalendarUsecase {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	uc := usecase.NewCalendarUsecase(nil, nil, loc,
		usecase.Hours{OpenHour: 9, OpenMinute: 30, CloseHour: 16},
		[]calendar.City{{Name: "New York", Zone: "America/New_York"}, {Name: "Tokyo", Zone: "Asia/Tokyo"}})
	uc.SetClock(func() time.Time { return time.Date(2025, 4, 17, 14, 0, 0, 0, time.UTC) })
	return uc
}

func setupRouter(uc CalendarUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMarketHandler(uc)
	r.GET("/clock", h.GetClock)
	r.GET("/market/status", h.GetStatus)
	r.GET("/market/holidays", h.GetHolidays)
	r.POST("/market/holidays/refresh", h.RefreshHolidays)
	return r
}

func TestMarketHandler_GetClock(t *testing.T) {
	r := setupRouter(newUsecase(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clock", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body []dto.CityTimeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []dto.CityTimeResponse{
		{City: "New York", Zone: "America/New_York", Time: "10:00"},
		{City: "Tokyo", Zone: "Asia/Tokyo", Time: "23:00"},
	}, body)
}

func TestMarketHandler_GetStatus(t *testing.T) {
	r := setupRouter(newUsecase(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/market/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.MarketStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, usecase.StatusOpen, body.Status)
	assert.Equal(t, usecase.LabelClosesIn, body.Countdown.Label)
	assert.Equal(t, "6h 0m 0s", body.Countdown.Message)
	assert.Equal(t, int64(6*3600), body.Countdown.Seconds)
	require.Len(t, body.Upcoming, 2)
	assert.Equal(t, "2025-04-18", body.Upcoming[0].Date)
	assert.Equal(t, "Friday", body.Upcoming[0].Weekday)
	require.NotNil(t, body.Upcoming[0].DaysUntil)
	assert.Equal(t, 1, *body.Upcoming[0].DaysUntil)
	assert.Equal(t, "Memorial Day", body.Upcoming[1].Name)
	assert.Equal(t, usecase.SourceCalculated, body.Source.Kind)
	assert.Empty(t, body.Source.UpdatedAt)
}

func TestMarketHandler_GetHolidays(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantYear   int
	}{
		{name: "default year", query: "", wantStatus: http.StatusOK, wantYear: 2025},
		{name: "explicit year", query: "?year=2022", wantStatus: http.StatusOK, wantYear: 2022},
		{name: "not a number", query: "?year=abc", wantStatus: http.StatusBadRequest},
		{name: "out of range", query: "?year=3000", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(newUsecase(t))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/market/holidays"+tt.query, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body dto.HolidaysResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantYear, body.Year)
			require.Len(t, body.Holidays, 10)
			for i := 1; i < len(body.Holidays); i++ {
				assert.Less(t, body.Holidays[i-1].Date, body.Holidays[i].Date)
			}
		})
	}
}

func TestMarketHandler_RefreshHolidays(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := setupRouter(newUsecase(t))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/market/holidays/refresh", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Holiday data refreshed!")
	})

	t.Run("failure", func(t *testing.T) {
		r := setupRouter(failingRefresh{newUsecase(t)})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/market/holidays/refresh", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
