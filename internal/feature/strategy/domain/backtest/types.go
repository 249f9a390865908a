// Package backtest はセンチメント売買戦略のバックテストエンジンを提供します。
package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action は取引の種類です。
type Action string

const (
	ActionBuy        Action = "Buy"
	ActionSell       Action = "Sell"
	ActionTakeProfit Action = "Take Profit"
	ActionStopLoss   Action = "Stop Loss"
)

// IsExit reports whether the action closes a position.
func (a Action) IsExit() bool {
	return a == ActionSell || a == ActionTakeProfit || a == ActionStopLoss
}

// PricePoint is one close of one symbol.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// Transaction は1件の約定です。ReturnPctは決済時のみ設定されます。
type Transaction struct {
	Time      time.Time
	Symbol    string
	Action    Action
	Shares    int64
	Price     decimal.Decimal
	Value     decimal.Decimal
	ReturnPct *float64
}

// ValuePoint はある時点のポートフォリオ評価額です。
type ValuePoint struct {
	Time  time.Time
	Value decimal.Decimal
}

// Params はバックテストの設定です。比率は小数で指定します（11.75% は 0.1175）。
type Params struct {
	InitialPortfolio float64
	TakeProfit       float64
	StopLoss         float64
	BullishThreshold float64
	BearishThreshold float64
	ReservePerAsset  float64
}

// DefaultParams は戦略の既定値です。
func DefaultParams() Params {
	return Params{
		InitialPortfolio: 10000,
		TakeProfit:       0.1175,
		StopLoss:         0.0225,
		BullishThreshold: 0.05,
		BearishThreshold: -0.3,
		ReservePerAsset:  100,
	}
}

type Result struct {
	Points       []ValuePoint
	Transactions []Transaction
}

// ClosedTrade は損益がゼロでない決済済みの取引です。
type ClosedTrade struct {
	Transaction    Transaction
	BuyPrice       decimal.Decimal
	SellPrice      decimal.Decimal
	Shares         int64
	Profit         decimal.Decimal
	ProfitPct      float64
	PortfolioValue *decimal.Decimal
}
