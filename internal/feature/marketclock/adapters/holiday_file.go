// Package adapters はmarketclockフィーチャーの休場日ファイルキャッシュを提供します。
package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"trading_backend/internal/feature/marketclock/domain/calendar"
	"trading_backend/internal/feature/marketclock/usecase"
)

// HolidayFileStore は年ごとの休場日を market_holidays_<year>.json に保存します。
type HolidayFileStore struct {
	dir string
}

var _ usecase.HolidayStore = (*HolidayFileStore)(nil)

func NewHolidayFileStore(dir string) *HolidayFileStore {
	return &HolidayFileStore{dir: dir}
}

func (s *HolidayFileStore) path(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("market_holidays_%d.json", year))
}

// Load returns the cached holidays and the file's modification time.
// A missing file yields an error wrapping fs.ErrNotExist.
func (s *HolidayFileStore) Load(year int) (calendar.Holidays, time.Time, error) {
	p := s.path(year)
	st, err := os.Stat(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	var h calendar.Holidays
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode %s: %w", p, err)
	}
	return h, st.ModTime(), nil
}

// Save はrenameioで一時ファイルに書き込んでから置き換えます。
func (s *HolidayFileStore) Save(year int, h calendar.Holidays) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create holiday cache dir: %w", err)
	}
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(s.path(year), renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending holiday file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(b); err != nil {
		return fmt.Errorf("write holiday file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace holiday file: %w", err)
	}
	return nil
}

// Remove deletes the cache file. A missing file is not an error.
func (s *HolidayFileStore) Remove(year int) error {
	if err := os.Remove(s.path(year)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *HolidayFileStore) ModTime(year int) (time.Time, bool) {
	st, err := os.Stat(s.path(year))
	if err != nil {
		return time.Time{}, false
	}
	return st.ModTime(), true
}
