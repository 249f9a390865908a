// Package dto はダッシュボードAPIのリクエスト/レスポンスDTOを定義します。
package dto

import (
	candledto "trading_backend/internal/feature/candles/transport/http/dto"
	marketdto "trading_backend/internal/feature/marketclock/transport/http/dto"
	sentimentdto "trading_backend/internal/feature/sentiment/transport/http/dto"
)

// UpdateSettingsRequest はPUT /settings のボディです。範囲の検証はユースケースで行います。
type UpdateSettingsRequest struct {
	PortfolioValue float64 `json:"portfolio_value" binding:"required"`
	Interval       string  `json:"interval" binding:"required"`
}

type SettingsResponse struct {
	PortfolioValue float64       `json:"portfolio_value"`
	Interval       string        `json:"interval"`
	Intervals      []string      `json:"intervals"`
	Limits         RangeResponse `json:"portfolio_range"`
}

type RangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SymbolResponse は銘柄ごとの表示データです。current_priceがnullの場合は "N/A" 表示です。
type SymbolResponse struct {
	Symbol       string                              `json:"symbol"`
	Available    bool                                `json:"available"`
	Error        string                              `json:"error,omitempty"`
	CurrentPrice *float64                            `json:"current_price"`
	Candles      []candledto.CandleResponse          `json:"candles"`
	Normalized   []candledto.NormalizedPointResponse `json:"normalized"`
}

type DashboardResponse struct {
	Settings       SettingsResponse                `json:"settings"`
	OutputSize     int                             `json:"outputsize"`
	Symbols        []SymbolResponse                `json:"symbols"`
	Sentiment      *sentimentdto.SentimentResponse `json:"sentiment"`
	SentimentError string                          `json:"sentiment_error,omitempty"`
	Market         marketdto.MarketStatusResponse  `json:"market"`
}
