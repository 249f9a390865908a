// Package usecase implements the watchlist operations.
package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"trading_backend/internal/feature/watchlist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for watchlist symbols.
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	// CreateMissing は未登録のコードだけを追加し、追加件数を返します。
	CreateMissing(ctx context.Context, symbols []entity.Symbol) (int64, error)
}

type SymbolUsecase struct {
	repo SymbolRepository
}

func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns the active symbols ordered by sort key.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes はインジェスト対象のコード一覧を返します。
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// EnsureDefaults はcodesのうち未登録のものを有効な銘柄として登録します。
// 既存行は有効フラグも含めて変更しません。
func (u *SymbolUsecase) EnsureDefaults(ctx context.Context, codes []string) error {
	seen := make(map[string]struct{}, len(codes))
	symbols := make([]entity.Symbol, 0, len(codes))
	for _, c := range codes {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		name, ok := entity.KnownNames[code]
		if !ok {
			name = code
		}
		symbols = append(symbols, entity.Symbol{
			Code:     code,
			Name:     name,
			Market:   entity.DefaultMarket,
			IsActive: true,
			SortKey:  len(symbols) + 1,
		})
	}
	if len(symbols) == 0 {
		return nil
	}

	n, err := u.repo.CreateMissing(ctx, symbols)
	if err != nil {
		return err
	}
	if n > 0 {
		zap.L().Info("watchlist seeded", zap.Int64("created", n))
	}
	return nil
}
