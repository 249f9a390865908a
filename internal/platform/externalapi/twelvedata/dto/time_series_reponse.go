// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesValue is one bar of a time_series response. Twelve Data encodes
// every number as a string; volume is absent for FX and some indices.
type TimeSeriesValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume,omitempty"`
}

// TimeSeriesResponse represents the JSON response from the time_series endpoint.
type TimeSeriesResponse struct {
	Status  string            `json:"status"`
	Code    int               `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Meta    TimeSeriesMeta    `json:"meta"`
	Values  []TimeSeriesValue `json:"values"`
}

type TimeSeriesMeta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Currency string `json:"currency,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}
