// Package finnhub provides the market holiday calendar from finnhub.io.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"trading_backend/internal/feature/marketclock/domain/calendar"
	"trading_backend/internal/platform/config"
	"trading_backend/internal/platform/externalapi/finnhub/dto"
	"trading_backend/internal/platform/metrics"
)

const provider = "finnhub"

type Config struct {
	APIKey   string
	BaseURL  string // e.g. "https://finnhub.io/api/v1"
	Exchange string
}

func ConfigFrom(c config.FinnhubConfig) Config {
	return Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Exchange: c.Exchange}
}

// Client はFinnhubの休場カレンダーを取得します。
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.Exchange == "" {
		cfg.Exchange = "US"
	}
	return &Client{cfg: cfg, client: client}
}

// Fetch は指定年の休場日を返します。取引時間が設定されている日は短縮取引として
// 名前に "(Early Close: ...)" を付けます。
func (c *Client) Fetch(ctx context.Context, year int) (out calendar.Holidays, err error) {
	defer func() { metrics.ObserveExternalCall(provider, err) }()

	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("finnhub: api key is not configured")
	}

	q := url.Values{}
	q.Set("exchange", c.cfg.Exchange)
	q.Set("from", fmt.Sprintf("%d-01-01", year))
	q.Set("to", fmt.Sprintf("%d-12-31", year))
	q.Set("token", c.cfg.APIKey)
	u := fmt.Sprintf("%s/calendar/holiday?%s", strings.TrimRight(c.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			zap.L().Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("finnhub http %d", res.StatusCode)
	}
	var body dto.HolidayResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("finnhub: %s", body.Error)
	}

	out = calendar.Holidays{}
	for _, h := range body.Data {
		day, perr := time.Parse(calendar.DateLayout, h.AtDate)
		if perr != nil {
			zap.L().Debug("skip holiday with bad date", zap.String("at_date", h.AtDate))
			continue
		}
		if day.Year() != year {
			continue
		}
		name := h.EventName
		if h.TradingHour != "" {
			name = fmt.Sprintf("%s (Early Close: %s)", h.EventName, h.TradingHour)
		}
		out[calendar.Key(day)] = name
	}
	return out, nil
}
