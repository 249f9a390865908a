package calendar

import "time"

// ClockError is shown in place of a time when the zone cannot be loaded.
const ClockError = "Error"

type City struct {
	Name string
	Zone string
}

type CityTime struct {
	City string
	Zone string
	Time string
}

// WorldClock は各都市の現在時刻を "15:04" 形式で設定順に返します。
func WorldClock(now time.Time, cities []City) []CityTime {
	out := make([]CityTime, 0, len(cities))
	for _, c := range cities {
		ct := CityTime{City: c.Name, Zone: c.Zone, Time: ClockError}
		if loc, err := time.LoadLocation(c.Zone); err == nil && c.Zone != "" {
			ct.Time = now.In(loc).Format("15:04")
		}
		out = append(out, ct)
	}
	return out
}
