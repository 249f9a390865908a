// Package calendar はNYSEの休場日計算と世界時計を提供します。
// すべて純粋関数で、外部APIやキャッシュには依存しません。
package calendar

import (
	"maps"
	"slices"
	"time"
)

// DateLayout is the key format of Holidays.
const DateLayout = "2006-01-02"

// Holidays は "YYYY-MM-DD" → 休場名 の対応です。
type Holidays map[string]string

// Date returns midnight of t's calendar day in t's location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// Name returns the holiday name of day, if any.
func (h Holidays) Name(day time.Time) (string, bool) {
	n, ok := h[Key(day)]
	return n, ok
}

// Merge は h に other を上書きで重ねた新しいマップを返します。
func (h Holidays) Merge(other Holidays) Holidays {
	out := make(Holidays, len(h)+len(other))
	maps.Copy(out, h)
	maps.Copy(out, other)
	return out
}

// SortedKeys returns the dates in ascending order.
func (h Holidays) SortedKeys() []string {
	return slices.Sorted(maps.Keys(h))
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// EasterSunday はブッチャーのアルゴリズムで復活祭の日付を求めます。
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func GoodFriday(year int) time.Time {
	return EasterSunday(year).AddDate(0, 0, -2)
}

// NthWeekday returns the n-th (1-based) weekday of the month.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// LastWeekday returns the last weekday of the month.
func LastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	back := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -back)
}

// observed は土曜なら前日、日曜なら翌日に振り替えます。
func observed(h Holidays, day time.Time, name string) {
	switch day.Weekday() {
	case time.Saturday:
		h[Key(day.AddDate(0, 0, -1))] = name + " (Observed)"
	case time.Sunday:
		h[Key(day.AddDate(0, 0, 1))] = name + " (Observed)"
	default:
		h[Key(day)] = name
	}
}

// StandardHolidays はNYSEの通常の休場日を計算します。
// 元日が土曜の場合、振替休日は前年の12月31日になります。
func StandardHolidays(year int) Holidays {
	h := Holidays{}
	date := func(m time.Month, d int) time.Time { return time.Date(year, m, d, 0, 0, 0, 0, time.UTC) }

	observed(h, date(time.January, 1), "New Year's Day")
	h[Key(NthWeekday(year, time.January, time.Monday, 3))] = "Martin Luther King Jr. Day"
	h[Key(NthWeekday(year, time.February, time.Monday, 3))] = "Presidents' Day"
	h[Key(GoodFriday(year))] = "Good Friday"
	h[Key(LastWeekday(year, time.May, time.Monday))] = "Memorial Day"
	observed(h, date(time.June, 19), "Juneteenth")
	observed(h, date(time.July, 4), "Independence Day")
	h[Key(NthWeekday(year, time.September, time.Monday, 1))] = "Labor Day"
	h[Key(NthWeekday(year, time.November, time.Thursday, 4))] = "Thanksgiving Day"
	observed(h, date(time.December, 25), "Christmas Day")
	return h
}
