package dto

// HolidayResponse は /calendar/holiday のレスポンスです。
type HolidayResponse struct {
	Exchange string         `json:"exchange"`
	Timezone string         `json:"timezone"`
	Data     []HolidayEntry `json:"data"`
	Error    string         `json:"error,omitempty"`
}

type HolidayEntry struct {
	EventName   string `json:"eventName"`
	AtDate      string `json:"atDate"`
	TradingHour string `json:"tradingHour"`
}
