// Package entity defines the persisted backtest run.
package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"trading_backend/internal/feature/strategy/domain/backtest"
)

// SignalMode はバックテストで使うセンチメントの出所です。
type SignalMode string

const (
	SignalsCycle      SignalMode = "cycle"
	SignalsHistorical SignalMode = "historical"
)

// Run is one executed backtest with its settings and outcome.
type Run struct {
	ID           string
	UserID       uint
	CreatedAt    time.Time
	Symbols      []string
	Interval     string
	Signals      SignalMode
	Params       backtest.Params
	FinalValue   decimal.Decimal
	MinValue     decimal.Decimal
	MaxValue     decimal.Decimal
	Transactions []backtest.Transaction
}
