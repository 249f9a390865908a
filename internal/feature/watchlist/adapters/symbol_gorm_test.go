package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"trading_backend/internal/feature/watchlist/domain/entity"
	"trading_backend/internal/platform/db/dbtest"
)

// seedSymbol はテスト用の銘柄を作成します。
func seedSymbol(t *testing.T, db *gorm.DB, code, name string, isActive bool, sortKey int) *entity.Symbol {
	t.Helper()

	symbol := &entity.Symbol{Code: code, Name: name, Market: "NYSE Arca", IsActive: true, SortKey: sortKey}
	require.NoError(t, db.Create(symbol).Error, "failed to seed symbol")
	// default:trueのカラムにfalseを入れるにはUpdateが必要
	if !isActive {
		require.NoError(t, db.Model(symbol).Update("is_active", false).Error)
	}
	return symbol
}

func TestSymbolGorm_ListActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		setupFunc     func(t *testing.T, db *gorm.DB)
		expectedCodes []string
	}{
		{
			name: "success: returns active symbols sorted by sort_key",
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedSymbol(t, db, "GLD", "SPDR Gold Shares", true, 2)
				seedSymbol(t, db, "SPY", "SPDR S&P 500 ETF", true, 1)
				seedSymbol(t, db, "QQQ", "Invesco QQQ Trust", true, 3)
			},
			expectedCodes: []string{"SPY", "GLD", "QQQ"},
		},
		{
			name: "success: excludes inactive symbols",
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedSymbol(t, db, "SPY", "SPDR S&P 500 ETF", true, 1)
				seedSymbol(t, db, "GLD", "SPDR Gold Shares", false, 2)
				seedSymbol(t, db, "QQQ", "Invesco QQQ Trust", true, 3)
			},
			expectedCodes: []string{"SPY", "QQQ"},
		},
		{
			name:          "success: returns empty list when no symbols",
			setupFunc:     func(t *testing.T, db *gorm.DB) {},
			expectedCodes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := dbtest.Open(t, &entity.Symbol{})
			repo := NewSymbolRepository(db)
			tt.setupFunc(t, db)

			symbols, err := repo.ListActive(context.Background())
			require.NoError(t, err)
			got := make([]string, 0, len(symbols))
			for _, s := range symbols {
				got = append(got, s.Code)
			}
			assert.Equal(t, tt.expectedCodes, got)

			codes, err := repo.ListActiveCodes(context.Background())
			require.NoError(t, err)
			if len(tt.expectedCodes) == 0 {
				assert.Empty(t, codes)
			} else {
				assert.Equal(t, tt.expectedCodes, codes)
			}
		})
	}
}

func TestSymbolGorm_CreateMissing(t *testing.T) {
	t.Parallel()

	db := dbtest.Open(t, &entity.Symbol{})
	repo := NewSymbolRepository(db)
	ctx := context.Background()

	existing := seedSymbol(t, db, "SPY", "custom name", false, 9)

	n, err := repo.CreateMissing(ctx, []entity.Symbol{
		{Code: "SPY", Name: "SPDR S&P 500 ETF", Market: "NYSE Arca", IsActive: true, SortKey: 1},
		{Code: "GLD", Name: "SPDR Gold Shares", Market: "NYSE Arca", IsActive: true, SortKey: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var spy entity.Symbol
	require.NoError(t, db.First(&spy, existing.ID).Error)
	assert.Equal(t, "custom name", spy.Name, "existing row untouched")
	assert.False(t, spy.IsActive)

	codes, err := repo.ListActiveCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GLD"}, codes)
}
