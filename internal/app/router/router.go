// Package router はgin.Engineにすべてのエンドポイントを登録します。
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	authhandler "trading_backend/internal/feature/auth/transport/handler"
	candleshandler "trading_backend/internal/feature/candles/transport/handler"
	dashboardhandler "trading_backend/internal/feature/dashboard/transport/handler"
	markethandler "trading_backend/internal/feature/marketclock/transport/handler"
	sentimenthandler "trading_backend/internal/feature/sentiment/transport/handler"
	strategyhandler "trading_backend/internal/feature/strategy/transport/handler"
	watchlisthandler "trading_backend/internal/feature/watchlist/transport/handler"
	"trading_backend/internal/platform/http/handler"
	"trading_backend/internal/platform/http/middleware"
	jwtmw "trading_backend/internal/platform/jwt"
)

const readyTimeout = 2 * time.Second

// Handlers はルーターに登録するフィーチャーごとのハンドラーです。
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Candles   *candleshandler.CandlesHandler
	Sentiment *sentimenthandler.SentimentHandler
	Backtests *strategyhandler.BacktestHandler
	Market    *markethandler.MarketHandler
	Dashboard *dashboardhandler.DashboardHandler
	Symbols   *watchlisthandler.SymbolHandler
}

func NewRouter(h Handlers, jwtSecret string, checks map[string]handler.Check) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(zap.L()), middleware.AccessLog(zap.L()))

	// 認証不要
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(checks, readyTimeout))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/signup", h.Auth.Signup)
	r.POST("/login", h.Auth.Login)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.GET("/symbols", h.Symbols.List)

		auth.GET("/candles/compare", h.Candles.CompareHandler)
		auth.GET("/candles/:code", h.Candles.GetCandlesHandler)

		auth.GET("/sentiment", h.Sentiment.GetCurrent)
		auth.GET("/sentiment/history", h.Sentiment.GetHistorical)

		auth.POST("/backtests", h.Backtests.Run)
		auth.GET("/backtests", h.Backtests.List)
		auth.GET("/backtests/:id", h.Backtests.Get)

		auth.GET("/clock", h.Market.GetClock)
		auth.GET("/market/status", h.Market.GetStatus)
		auth.GET("/market/holidays", h.Market.GetHolidays)
		auth.POST("/market/holidays/refresh", h.Market.RefreshHolidays)

		auth.GET("/dashboard", h.Dashboard.GetDashboard)
		auth.GET("/settings", h.Dashboard.GetSettings)
		auth.PUT("/settings", h.Dashboard.UpdateSettings)
	}

	return r
}
