// Package dto はバックテストAPIのリクエスト/レスポンスDTOを定義します。
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"trading_backend/internal/feature/strategy/domain/backtest"
	"trading_backend/internal/feature/strategy/domain/entity"
	"trading_backend/internal/feature/strategy/usecase"
)

const timeLayout = time.RFC3339

// BacktestRequest はPOST /backtests のボディです。割合はパーセントで受け取ります。
type BacktestRequest struct {
	Symbols          []string `json:"symbols" binding:"omitempty,max=10,dive,required,max=16"`
	Interval         string   `json:"interval" binding:"omitempty,max=16"`
	OutputSize       int      `json:"outputsize" binding:"omitempty,min=2,max=5000"`
	PortfolioValue   float64  `json:"portfolio_value" binding:"omitempty,gt=0"`
	TakeProfitPct    *float64 `json:"take_profit_pct" binding:"omitempty,gt=0,lte=100"`
	StopLossPct      *float64 `json:"stop_loss_pct" binding:"omitempty,gt=0,lte=100"`
	BullishThreshold *float64 `json:"bullish_threshold" binding:"omitempty,gte=-1,lte=1"`
	BearishThreshold *float64 `json:"bearish_threshold" binding:"omitempty,gte=-1,lte=1"`
	Signals          string   `json:"signals" binding:"omitempty,oneof=cycle historical"`
}

// ToRunRequest converts the body into a usecase request, percentages into ratios.
func (r BacktestRequest) ToRunRequest(userID uint) usecase.RunRequest {
	return usecase.RunRequest{
		UserID:           userID,
		Symbols:          r.Symbols,
		Interval:         r.Interval,
		OutputSize:       r.OutputSize,
		PortfolioValue:   r.PortfolioValue,
		TakeProfit:       ratio(r.TakeProfitPct),
		StopLoss:         ratio(r.StopLossPct),
		BullishThreshold: r.BullishThreshold,
		BearishThreshold: r.BearishThreshold,
		Signals:          entity.SignalMode(r.Signals),
	}
}

func ratio(pct *float64) *float64 {
	if pct == nil {
		return nil
	}
	v := *pct / 100
	return &v
}

type ParamsResponse struct {
	InitialPortfolio float64 `json:"initial_portfolio"`
	TakeProfitPct    float64 `json:"take_profit_pct"`
	StopLossPct      float64 `json:"stop_loss_pct"`
	BullishThreshold float64 `json:"bullish_threshold"`
	BearishThreshold float64 `json:"bearish_threshold"`
	ReservePerAsset  float64 `json:"reserve_per_asset"`
}

type TransactionResponse struct {
	Time      string          `json:"time"`
	Symbol    string          `json:"symbol"`
	Action    string          `json:"action"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
	ReturnPct *float64        `json:"return_pct,omitempty"`
}

type ValuePointResponse struct {
	Time  string          `json:"time"`
	Value decimal.Decimal `json:"value"`
}

type BenchmarkResponse struct {
	Symbol string               `json:"symbol"`
	Points []ValuePointResponse `json:"points"`
}

// ClosedTradeResponse は決済済み取引の損益です。
type ClosedTradeResponse struct {
	Time           string           `json:"time"`
	Symbol         string           `json:"symbol"`
	Action         string           `json:"action"`
	Shares         int64            `json:"shares"`
	BuyPrice       decimal.Decimal  `json:"buy_price"`
	SellPrice      decimal.Decimal  `json:"sell_price"`
	Profit         decimal.Decimal  `json:"profit"`
	ProfitPct      float64          `json:"profit_pct"`
	PortfolioValue *decimal.Decimal `json:"portfolio_value,omitempty"`
}

// RunSummaryResponse は一覧用の要約です。
type RunSummaryResponse struct {
	ID         string          `json:"id"`
	CreatedAt  string          `json:"created_at"`
	Symbols    []string        `json:"symbols"`
	Interval   string          `json:"interval"`
	Signals    string          `json:"signals"`
	Params     ParamsResponse  `json:"params"`
	FinalValue decimal.Decimal `json:"final_value"`
	MinValue   decimal.Decimal `json:"min_value"`
	MaxValue   decimal.Decimal `json:"max_value"`
}

type RunResponse struct {
	RunSummaryResponse
	Transactions []TransactionResponse `json:"transactions"`
	Points       []ValuePointResponse  `json:"points,omitempty"`
	Benchmarks   []BenchmarkResponse   `json:"benchmarks,omitempty"`
	ClosedTrades []ClosedTradeResponse `json:"closed_trades"`
}

func FromRunSummary(r entity.Run) RunSummaryResponse {
	symbols := r.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	return RunSummaryResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.Format(timeLayout),
		Symbols:   symbols,
		Interval:  r.Interval,
		Signals:   string(r.Signals),
		Params: ParamsResponse{
			InitialPortfolio: r.Params.InitialPortfolio,
			TakeProfitPct:    r.Params.TakeProfit * 100,
			StopLossPct:      r.Params.StopLoss * 100,
			BullishThreshold: r.Params.BullishThreshold,
			BearishThreshold: r.Params.BearishThreshold,
			ReservePerAsset:  r.Params.ReservePerAsset,
		},
		FinalValue: r.FinalValue,
		MinValue:   r.MinValue,
		MaxValue:   r.MaxValue,
	}
}

// FromRun は保存済みの実行結果を変換します。評価額の推移は保存しないので、
// 決済時のポートフォリオ評価額は含まれません。
func FromRun(r entity.Run) RunResponse {
	return RunResponse{
		RunSummaryResponse: FromRunSummary(r),
		Transactions:       fromTransactions(r.Transactions),
		ClosedTrades:       fromClosedTrades(backtest.ClosedTrades(r.Transactions, nil)),
	}
}

// FromRunOutput は実行直後の完全な結果を変換します。
func FromRunOutput(out *usecase.RunOutput) RunResponse {
	resp := RunResponse{
		RunSummaryResponse: FromRunSummary(out.Run),
		Transactions:       fromTransactions(out.Run.Transactions),
		Points:             fromPoints(out.Points),
		ClosedTrades:       fromClosedTrades(out.ClosedTrades),
	}
	for _, b := range out.Benchmarks {
		resp.Benchmarks = append(resp.Benchmarks, BenchmarkResponse{Symbol: b.Symbol, Points: fromPoints(b.Points)})
	}
	return resp
}

func fromTransactions(txs []backtest.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionResponse{
			Time:      t.Time.Format(timeLayout),
			Symbol:    t.Symbol,
			Action:    string(t.Action),
			Shares:    t.Shares,
			Price:     t.Price,
			Value:     t.Value,
			ReturnPct: t.ReturnPct,
		})
	}
	return out
}

func fromPoints(ps []backtest.ValuePoint) []ValuePointResponse {
	out := make([]ValuePointResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, ValuePointResponse{Time: p.Time.Format(timeLayout), Value: p.Value})
	}
	return out
}

func fromClosedTrades(cts []backtest.ClosedTrade) []ClosedTradeResponse {
	out := make([]ClosedTradeResponse, 0, len(cts))
	for _, c := range cts {
		out = append(out, ClosedTradeResponse{
			Time:           c.Transaction.Time.Format(timeLayout),
			Symbol:         c.Transaction.Symbol,
			Action:         string(c.Transaction.Action),
			Shares:         c.Shares,
			BuyPrice:       c.BuyPrice,
			SellPrice:      c.SellPrice,
			Profit:         c.Profit,
			ProfitPct:      c.ProfitPct,
			PortfolioValue: c.PortfolioValue,
		})
	}
	return out
}
