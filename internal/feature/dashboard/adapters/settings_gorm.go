// Package adapters はダッシュボード設定のGORM永続化を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trading_backend/internal/feature/dashboard/domain/entity"
	"trading_backend/internal/feature/dashboard/usecase"
)

type settingsGorm struct {
	db *gorm.DB
}

var _ usecase.SettingsRepository = (*settingsGorm)(nil)

func NewSettingsRepository(db *gorm.DB) *settingsGorm {
	return &settingsGorm{db: db}
}

type SettingsModel struct {
	UserID         uint    `gorm:"primaryKey;autoIncrement:false"`
	PortfolioValue float64 `gorm:"not null"`
	Interval       string  `gorm:"size:16;not null"`
	UpdatedAt      time.Time
}

func (SettingsModel) TableName() string {
	return "dashboard_settings"
}

func (r *settingsGorm) Find(ctx context.Context, userID uint) (*entity.Settings, error) {
	var m SettingsModel
	err := r.db.WithContext(ctx).Where(&SettingsModel{UserID: userID}).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity.Settings{
		UserID:         m.UserID,
		PortfolioValue: m.PortfolioValue,
		Interval:       m.Interval,
		UpdatedAt:      m.UpdatedAt.UTC(),
	}, nil
}

// Save はユーザーごとに1行をupsertします。
func (r *settingsGorm) Save(ctx context.Context, s *entity.Settings) error {
	m := SettingsModel{
		UserID:         s.UserID,
		PortfolioValue: s.PortfolioValue,
		Interval:       s.Interval,
		UpdatedAt:      s.UpdatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"portfolio_value", "interval", "updated_at"}),
	}).Create(&m).Error
}
