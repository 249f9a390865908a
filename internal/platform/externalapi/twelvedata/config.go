// Package twelvedata provides a client for the Twelve Data market data API.
package twelvedata

import (
	"time"

	"trading_backend/internal/platform/config"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string
	BaseURL string // e.g. "https://api.twelvedata.com"
	Timeout time.Duration
}

// ConfigFrom maps the application settings onto a client Config.
func ConfigFrom(c config.TwelveDataConfig) Config {
	return Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Timeout: c.Timeout}
}
