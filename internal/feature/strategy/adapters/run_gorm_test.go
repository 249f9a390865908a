package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading_backend/internal/feature/strategy/domain/backtest"
	"trading_backend/internal/feature/strategy/domain/entity"
	"trading_backend/internal/feature/strategy/usecase"
	"trading_backend/internal/platform/db/dbtest"
)

func sampleRun(id string, userID uint, created time.Time) *entity.Run {
	ret := 11.75
	return &entity.Run{
		ID:         id,
		UserID:     userID,
		CreatedAt:  created,
		Symbols:    []string{"SPY", "GLD"},
		Interval:   "1day",
		Signals:    entity.SignalsCycle,
		Params:     backtest.DefaultParams(),
		FinalValue: decimal.RequireFromString("10588"),
		MinValue:   decimal.RequireFromString("9853.5"),
		MaxValue:   decimal.RequireFromString("10588"),
		Transactions: []backtest.Transaction{
			{Time: created, Symbol: "SPY", Action: backtest.ActionBuy, Shares: 49, Price: decimal.NewFromInt(100), Value: decimal.NewFromInt(4900)},
			{Time: created.AddDate(0, 0, 1), Symbol: "SPY", Action: backtest.ActionTakeProfit, Shares: 49, Price: decimal.NewFromInt(112), Value: decimal.NewFromInt(5488), ReturnPct: &ret},
		},
	}
}

func TestRunGorm_CreateAndFind(t *testing.T) {
	t.Parallel()

	db := dbtest.Open(t, &RunModel{}, &TransactionModel{})
	repo := NewRunRepository(db)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	run := sampleRun("4f1c7a1e-9d0b-4f43-8a57-3d9b6f0c2e11", 1, created)
	require.NoError(t, repo.Create(ctx, run))

	got, err := repo.FindByID(ctx, 1, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.Symbols, got.Symbols)
	assert.Equal(t, run.Params, got.Params)
	assert.Equal(t, entity.SignalsCycle, got.Signals)
	assert.True(t, run.FinalValue.Equal(got.FinalValue))
	assert.True(t, run.MinValue.Equal(got.MinValue))
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, backtest.ActionBuy, got.Transactions[0].Action)
	assert.Nil(t, got.Transactions[0].ReturnPct)
	assert.Equal(t, backtest.ActionTakeProfit, got.Transactions[1].Action)
	require.NotNil(t, got.Transactions[1].ReturnPct)
	assert.InDelta(t, 11.75, *got.Transactions[1].ReturnPct, 1e-9)
	assert.True(t, decimal.NewFromInt(5488).Equal(got.Transactions[1].Value))

	_, err = repo.FindByID(ctx, 2, run.ID)
	assert.ErrorIs(t, err, usecase.ErrRunNotFound)

	_, err = repo.FindByID(ctx, 1, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, usecase.ErrRunNotFound)
}

func TestRunGorm_List(t *testing.T) {
	t.Parallel()

	db := dbtest.Open(t, &RunModel{}, &TransactionModel{})
	repo := NewRunRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, sampleRun("00000000-0000-0000-0000-000000000001", 1, base)))
	require.NoError(t, repo.Create(ctx, sampleRun("00000000-0000-0000-0000-000000000002", 1, base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleRun("00000000-0000-0000-0000-000000000003", 2, base.Add(2*time.Hour))))

	runs, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", runs[0].ID)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", runs[1].ID)
	assert.Empty(t, runs[0].Transactions)

	runs, err = repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
