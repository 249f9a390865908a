// Package adapters はバックテスト結果のGORM永続化を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"trading_backend/internal/feature/strategy/domain/backtest"
	"trading_backend/internal/feature/strategy/domain/entity"
	"trading_backend/internal/feature/strategy/usecase"
)

type runGorm struct {
	db *gorm.DB
}

var _ usecase.RunRepository = (*runGorm)(nil)

func NewRunRepository(db *gorm.DB) *runGorm {
	return &runGorm{db: db}
}

type RunModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"not null;index:idx_runs_user_created,priority:1"`
	CreatedAt time.Time `gorm:"not null;index:idx_runs_user_created,priority:2"`
	Symbols   string    `gorm:"size:255;not null"`
	Interval  string    `gorm:"size:16;not null"`
	Signals   string    `gorm:"size:16;not null"`

	InitialPortfolio float64 `gorm:"not null"`
	TakeProfit       float64 `gorm:"not null"`
	StopLoss         float64 `gorm:"not null"`
	BullishThreshold float64 `gorm:"not null"`
	BearishThreshold float64 `gorm:"not null"`
	ReservePerAsset  float64 `gorm:"not null"`

	FinalValue decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	MinValue   decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	MaxValue   decimal.Decimal `gorm:"type:numeric(20,8);not null"`

	Transactions []TransactionModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (RunModel) TableName() string {
	return "backtest_runs"
}

type TransactionModel struct {
	ID        uint            `gorm:"primaryKey"`
	RunID     string          `gorm:"size:36;not null;index"`
	Seq       int             `gorm:"not null"`
	Time      time.Time       `gorm:"not null"`
	Symbol    string          `gorm:"size:32;not null"`
	Action    string          `gorm:"size:16;not null"`
	Shares    int64           `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Value     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	ReturnPct *float64
}

func (TransactionModel) TableName() string {
	return "backtest_transactions"
}

func toModel(r *entity.Run) RunModel {
	txs := make([]TransactionModel, 0, len(r.Transactions))
	for i, t := range r.Transactions {
		txs = append(txs, TransactionModel{
			RunID:     r.ID,
			Seq:       i,
			Time:      t.Time.UTC(),
			Symbol:    t.Symbol,
			Action:    string(t.Action),
			Shares:    t.Shares,
			Price:     t.Price,
			Value:     t.Value,
			ReturnPct: t.ReturnPct,
		})
	}
	return RunModel{
		ID:               r.ID,
		UserID:           r.UserID,
		CreatedAt:        r.CreatedAt.UTC(),
		Symbols:          strings.Join(r.Symbols, ","),
		Interval:         r.Interval,
		Signals:          string(r.Signals),
		InitialPortfolio: r.Params.InitialPortfolio,
		TakeProfit:       r.Params.TakeProfit,
		StopLoss:         r.Params.StopLoss,
		BullishThreshold: r.Params.BullishThreshold,
		BearishThreshold: r.Params.BearishThreshold,
		ReservePerAsset:  r.Params.ReservePerAsset,
		FinalValue:       r.FinalValue,
		MinValue:         r.MinValue,
		MaxValue:         r.MaxValue,
		Transactions:     txs,
	}
}

func (m RunModel) toEntity() entity.Run {
	var txs []backtest.Transaction
	for _, t := range m.Transactions {
		txs = append(txs, backtest.Transaction{
			Time:      t.Time.UTC(),
			Symbol:    t.Symbol,
			Action:    backtest.Action(t.Action),
			Shares:    t.Shares,
			Price:     t.Price,
			Value:     t.Value,
			ReturnPct: t.ReturnPct,
		})
	}
	var symbols []string
	if m.Symbols != "" {
		symbols = strings.Split(m.Symbols, ",")
	}
	return entity.Run{
		ID:        m.ID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt.UTC(),
		Symbols:   symbols,
		Interval:  m.Interval,
		Signals:   entity.SignalMode(m.Signals),
		Params: backtest.Params{
			InitialPortfolio: m.InitialPortfolio,
			TakeProfit:       m.TakeProfit,
			StopLoss:         m.StopLoss,
			BullishThreshold: m.BullishThreshold,
			BearishThreshold: m.BearishThreshold,
			ReservePerAsset:  m.ReservePerAsset,
		},
		FinalValue:   m.FinalValue,
		MinValue:     m.MinValue,
		MaxValue:     m.MaxValue,
		Transactions: txs,
	}
}

// Create は実行結果と約定をひとつのトランザクションで保存します。
func (r *runGorm) Create(ctx context.Context, run *entity.Run) error {
	m := toModel(run)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
}

func (r *runGorm) FindByID(ctx context.Context, userID uint, id string) (*entity.Run, error) {
	var m RunModel
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where(&RunModel{ID: id, UserID: userID}).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	e := m.toEntity()
	return &e, nil
}

// List は約定を読み込まずに新しい順で返します。
func (r *runGorm) List(ctx context.Context, userID uint, limit int) ([]entity.Run, error) {
	var rows []RunModel
	if err := r.db.WithContext(ctx).
		Where(&RunModel{UserID: userID}).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Run, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}
