// Package entity defines the per-user dashboard settings.
package entity

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// SidebarIntervals はダッシュボードで選択できる時間足です。
var SidebarIntervals = []string{"1min", "5min", "15min", "30min", "1h", "1day", "1week"}

var (
	ErrPortfolioOutOfRange = errors.New("portfolio value out of range")
	ErrInvalidInterval     = errors.New("interval is not selectable")
)

type Settings struct {
	UserID         uint
	PortfolioValue float64
	Interval       string
	UpdatedAt      time.Time
}

// Limits は設定値の既定値と許容範囲です。
type Limits struct {
	DefaultPortfolioValue float64
	MinPortfolioValue     float64
	MaxPortfolioValue     float64
	DefaultInterval       string
}

func (l Limits) Default(userID uint) Settings {
	return Settings{UserID: userID, PortfolioValue: l.DefaultPortfolioValue, Interval: l.DefaultInterval}
}

func (l Limits) Validate(s Settings) error {
	if s.PortfolioValue < l.MinPortfolioValue || s.PortfolioValue > l.MaxPortfolioValue {
		return fmt.Errorf("%w: must be between %.0f and %.0f", ErrPortfolioOutOfRange, l.MinPortfolioValue, l.MaxPortfolioValue)
	}
	if !slices.Contains(SidebarIntervals, s.Interval) {
		return fmt.Errorf("%w: %q", ErrInvalidInterval, s.Interval)
	}
	return nil
}
