// Package newsapi provides a headline client for newsapi.org.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"trading_backend/internal/feature/sentiment/domain/entity"
	"trading_backend/internal/feature/sentiment/usecase"
	"trading_backend/internal/platform/config"
	"trading_backend/internal/platform/externalapi/newsapi/dto"
	"trading_backend/internal/platform/metrics"
)

const (
	provider      = "newsapi"
	unknownSource = "Unknown"
	// lookback は資産指定時の検索期間です。
	lookback = 24 * time.Hour
)

// Config holds configuration for the NewsAPI client.
type Config struct {
	APIKey   string
	BaseURL  string // e.g. "https://newsapi.org/v2"
	PageSize int
}

func ConfigFrom(c config.NewsAPIConfig) Config {
	return Config{APIKey: c.APIKey, BaseURL: c.BaseURL, PageSize: c.PageSize}
}

// Client はNewsAPIからヘッドラインを取得するHeadlineSource実装です。
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

var _ usecase.HeadlineSource = (*Client)(nil)

func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return &Client{cfg: cfg, client: client, now: time.Now}
}

// Latest はassetが空ならビジネスカテゴリのトップニュースを、
// 指定されていれば直近24時間のassetに関する記事を新しい順に返します。
func (c *Client) Latest(ctx context.Context, asset string) ([]entity.Article, error) {
	q := url.Values{}
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(c.cfg.PageSize))

	if asset == "" {
		q.Set("category", "business")
		return c.get(ctx, "top-headlines", q)
	}

	now := c.now().UTC()
	q.Set("q", asset)
	q.Set("from", now.Add(-lookback).Format(time.RFC3339))
	q.Set("to", now.Format(time.RFC3339))
	q.Set("sortBy", "publishedAt")
	return c.get(ctx, "everything", q)
}

// OnDate は指定日（終日）に公開されたassetに関する記事を返します。
func (c *Client) OnDate(ctx context.Context, date time.Time, asset string) ([]entity.Article, error) {
	day := date.Format("2006-01-02")
	q := url.Values{}
	q.Set("q", asset)
	q.Set("from", day)
	q.Set("to", day)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	return c.get(ctx, "everything", q)
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (out []entity.Article, err error) {
	defer func() { metrics.ObserveExternalCall(provider, err) }()

	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.cfg.BaseURL, "/"), endpoint, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			zap.L().Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	var body dto.ArticlesResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)

	if res.StatusCode >= 400 {
		if decodeErr == nil && body.Message != "" {
			return nil, fmt.Errorf("newsapi http %d: %s", res.StatusCode, body.Message)
		}
		return nil, fmt.Errorf("newsapi http %d", res.StatusCode)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("newsapi: %s", body.Message)
	}

	out = make([]entity.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		src := a.Source.Name
		if src == "" {
			src = unknownSource
		}
		out = append(out, entity.Article{
			Title:       a.Title,
			URL:         a.URL,
			Source:      src,
			PublishedAt: a.PublishedAt,
		})
	}
	return out, nil
}
