// Package dto はmarketclockフィーチャーのレスポンスDTOを定義します。
package dto

type CityTimeResponse struct {
	City string `json:"city"`
	Zone string `json:"zone"`
	Time string `json:"time"`
}

type CountdownResponse struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Seconds int64  `json:"seconds"`
}

type HolidayResponse struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Name      string `json:"name"`
	DaysUntil *int   `json:"days_until,omitempty"`
}

// SourceResponse は休場日データの出所です。updated_atは計算値のみの場合省略されます。
type SourceResponse struct {
	Kind      string `json:"kind"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type MarketStatusResponse struct {
	Now       string            `json:"now"`
	Status    string            `json:"status"`
	Countdown CountdownResponse `json:"countdown"`
	Upcoming  []HolidayResponse `json:"upcoming"`
	Source    SourceResponse    `json:"source"`
}

type HolidaysResponse struct {
	Year     int               `json:"year"`
	Source   SourceResponse    `json:"source"`
	Holidays []HolidayResponse `json:"holidays"`
}
