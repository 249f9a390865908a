// Package usecase は市場の開場状況、カウントダウン、休場日の取得を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"trading_backend/internal/feature/marketclock/domain/calendar"
)

const (
	StatusOpen       = "OPEN"
	StatusWeekend    = "CLOSED (Weekend)"
	StatusAfterHours = "CLOSED (After Hours)"

	LabelOpensIn  = "Market opens in:"
	LabelClosesIn = "Market closes in:"

	// SourceCalculated is reported when no holiday file has been written yet.
	SourceCalculated = "calculated"

	maxBusinessDaySearch = 30
)

// HolidayProvider は外部APIから休場日を取得します。
type HolidayProvider interface {
	Fetch(ctx context.Context, year int) (calendar.Holidays, error)
}

// HolidayStore は年ごとの休場日のファイルキャッシュです。
type HolidayStore interface {
	Load(year int) (calendar.Holidays, time.Time, error)
	Save(year int, h calendar.Holidays) error
	Remove(year int) error
	ModTime(year int) (time.Time, bool)
}

// Hours は市場のタイムゾーンでの取引時間です。
type Hours struct {
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

type Countdown struct {
	Duration time.Duration
	Label    string
	Message  string
}

type Holiday struct {
	Date      time.Time
	Name      string
	DaysUntil int
}

// Source は休場日データの出所です。UpdatedAtは計算値のみの場合ゼロです。
type Source struct {
	Kind      string
	UpdatedAt time.Time
}

type CalendarUsecase struct {
	provider HolidayProvider
	store    HolidayStore
	loc      *time.Location
	hours    Hours
	cities   []calendar.City
	now      func() time.Time

	// muはmemのみを守る。ファイルとプロバイダへのアクセスはロック外
	mu    sync.Mutex
	mem   map[int]calendar.Holidays
	group singleflight.Group
}

// NewCalendarUsecase はCalendarUsecaseを生成します。providerとstoreはnilでも動作し、
// その場合は計算した休場日のみを使います。
func NewCalendarUsecase(provider HolidayProvider, store HolidayStore, loc *time.Location, hours Hours, cities []calendar.City) *CalendarUsecase {
	return &CalendarUsecase{
		provider: provider,
		store:    store,
		loc:      loc,
		hours:    hours,
		cities:   cities,
		now:      time.Now,
		mem:      map[int]calendar.Holidays{},
	}
}

// SetClock replaces the time source.
func (u *CalendarUsecase) SetClock(now func() time.Time) {
	u.now = now
}

func (u *CalendarUsecase) Now() time.Time {
	return u.now().In(u.loc)
}

func (u *CalendarUsecase) WorldClock() []calendar.CityTime {
	return calendar.WorldClock(u.now(), u.cities)
}

// Holidays はメモリ、当日更新のファイルキャッシュ、計算値+Finnhubの順に休場日を解決します。
// 同じ日付はFinnhubの名前を優先します。同じ年の同時解決は1回にまとめます。
func (u *CalendarUsecase) Holidays(ctx context.Context, year int) calendar.Holidays {
	if h, ok := u.cached(year); ok {
		return h
	}
	v, _, _ := u.group.Do(strconv.Itoa(year), func() (any, error) {
		if h, ok := u.cached(year); ok {
			return h, nil
		}
		h := u.resolve(ctx, year)
		u.mu.Lock()
		u.mem[year] = h
		u.mu.Unlock()
		return h, nil
	})
	return v.(calendar.Holidays)
}

func (u *CalendarUsecase) cached(year int) (calendar.Holidays, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	h, ok := u.mem[year]
	return h, ok
}

func (u *CalendarUsecase) resolve(ctx context.Context, year int) calendar.Holidays {
	if h, ok := u.loadFresh(year); ok {
		return h
	}

	merged := calendar.StandardHolidays(year)
	if u.provider != nil {
		fetched, err := u.provider.Fetch(ctx, year)
		if err != nil {
			zap.L().Warn("holiday provider unavailable, using calculated holidays",
				zap.Int("year", year), zap.Error(err))
		} else {
			merged = merged.Merge(fetched)
		}
	}
	if u.store != nil {
		if err := u.store.Save(year, merged); err != nil {
			zap.L().Warn("failed to write holiday cache", zap.Int("year", year), zap.Error(err))
		}
	}
	return merged
}

func (u *CalendarUsecase) loadFresh(year int) (calendar.Holidays, bool) {
	if u.store == nil {
		return nil, false
	}
	h, mod, err := u.store.Load(year)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			zap.L().Warn("ignoring unreadable holiday cache", zap.Int("year", year), zap.Error(err))
		}
		return nil, false
	}
	if !sameDay(mod.In(u.loc), u.Now()) {
		return nil, false
	}
	return h, true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (u *CalendarUsecase) HolidayName(ctx context.Context, day time.Time) (string, bool) {
	day = day.In(u.loc)
	return u.Holidays(ctx, day.Year()).Name(day)
}

func (u *CalendarUsecase) IsHoliday(ctx context.Context, day time.Time) bool {
	_, ok := u.HolidayName(ctx, day)
	return ok
}

// NextBusinessDay は翌日以降で最初の平日かつ非休場日を返します。
func (u *CalendarUsecase) NextBusinessDay(ctx context.Context, day time.Time) time.Time {
	d := calendar.Date(day.In(u.loc)).AddDate(0, 0, 1)
	for i := 0; i < maxBusinessDaySearch && (calendar.IsWeekend(d) || u.IsHoliday(ctx, d)); i++ {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Status は現在の市場状態を返します。寄り付き前も "After Hours" です。
func (u *CalendarUsecase) Status(ctx context.Context) string {
	now := u.Now()
	if calendar.IsWeekend(now) {
		return StatusWeekend
	}
	if name, ok := u.HolidayName(ctx, now); ok {
		return fmt.Sprintf("CLOSED (%s)", name)
	}
	open, closeAt := u.sessionOn(now)
	if !now.Before(open) && now.Before(closeAt) {
		return StatusOpen
	}
	return StatusAfterHours
}

// Countdown は次の寄り付きまたは大引けまでの残り時間を返します。
func (u *CalendarUsecase) Countdown(ctx context.Context) Countdown {
	now := u.Now()

	if calendar.IsWeekend(now) || u.IsHoliday(ctx, now) {
		extra := "Weekend"
		if name, ok := u.HolidayName(ctx, now); ok {
			extra = name
		}
		open, _ := u.sessionOn(u.NextBusinessDay(ctx, now))
		return newCountdown(open.Sub(now), fmt.Sprintf("Market opens in (After %s):", extra), true)
	}

	open, closeAt := u.sessionOn(now)
	switch {
	case now.Before(open):
		return newCountdown(open.Sub(now), LabelOpensIn, false)
	case now.Before(closeAt):
		return newCountdown(closeAt.Sub(now), LabelClosesIn, false)
	default:
		next, _ := u.sessionOn(u.NextBusinessDay(ctx, now))
		return newCountdown(next.Sub(now), LabelOpensIn, true)
	}
}

func (u *CalendarUsecase) sessionOn(day time.Time) (open, closeAt time.Time) {
	y, m, d := day.In(u.loc).Date()
	open = time.Date(y, m, d, u.hours.OpenHour, u.hours.OpenMinute, 0, 0, u.loc)
	closeAt = time.Date(y, m, d, u.hours.CloseHour, u.hours.CloseMinute, 0, 0, u.loc)
	return open, closeAt
}

func newCountdown(d time.Duration, label string, withDays bool) Countdown {
	d = d.Truncate(time.Second)
	return Countdown{Duration: d, Label: label, Message: FormatCountdown(d, withDays)}
}

// FormatCountdown は "1d 2h 3m 4s" または "2h 3m 4s" 形式に整形します。
func FormatCountdown(d time.Duration, withDays bool) string {
	total := int64(d / time.Second)
	days := total / 86400
	rem := total % 86400
	h, m, s := rem/3600, rem%3600/60, rem%60
	if withDays {
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	}
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// Upcoming は今日以降の休場日を今年と来年から最大n件返します。
func (u *CalendarUsecase) Upcoming(ctx context.Context, n int) []Holiday {
	today := calendar.Date(u.Now())
	all := u.Holidays(ctx, today.Year()).Merge(u.Holidays(ctx, today.Year()+1))
	todayKey := calendar.Key(today)

	out := []Holiday{}
	for _, k := range all.SortedKeys() {
		if len(out) >= n {
			break
		}
		if k < todayKey {
			continue
		}
		d, err := time.ParseInLocation(calendar.DateLayout, k, u.loc)
		if err != nil {
			continue
		}
		out = append(out, Holiday{Date: d, Name: all[k], DaysUntil: daysBetween(today, d)})
	}
	return out
}

func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Refresh はメモリとファイルのキャッシュを破棄し、今年と来年を再取得します。
func (u *CalendarUsecase) Refresh(ctx context.Context) error {
	year := u.Now().Year()

	u.mu.Lock()
	clear(u.mem)
	var err error
	if u.store != nil {
		err = errors.Join(u.store.Remove(year), u.store.Remove(year+1))
	}
	u.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear holiday cache: %w", err)
	}

	u.Holidays(ctx, year)
	u.Holidays(ctx, year+1)
	zap.L().Info("holiday data refreshed", zap.Int("year", year))
	return nil
}

// Source はファイルキャッシュの最終更新時刻を返します。
func (u *CalendarUsecase) Source(year int) Source {
	if u.store != nil {
		if mod, ok := u.store.ModTime(year); ok {
			return Source{Kind: "cached", UpdatedAt: mod.In(u.loc)}
		}
	}
	return Source{Kind: SourceCalculated}
}
