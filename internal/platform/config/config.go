// Package config loads application settings from an optional YAML file and
// TRADER_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (TRADER_TWELVEDATA_API_KEY, ...).
const EnvPrefix = "TRADER"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	TwelveData TwelveDataConfig `mapstructure:"twelvedata"`
	NewsAPI    NewsAPIConfig    `mapstructure:"newsapi"`
	Finnhub    FinnhubConfig    `mapstructure:"finnhub"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Trading    TradingConfig    `mapstructure:"trading"`
	Sentiment  SentimentConfig  `mapstructure:"sentiment"`
	Clock      ClockConfig      `mapstructure:"clock"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Holidays   HolidaysConfig   `mapstructure:"holidays"`
	Cron       CronConfig       `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env" validate:"required"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding" validate:"oneof=json console"`
}

type DBConfig struct {
	Driver         string        `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN            string        `mapstructure:"dsn"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RunMigrations  bool          `mapstructure:"run_migrations"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

type TwelveDataConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"gt=0"`
}

type NewsAPIConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	PageSize int           `mapstructure:"page_size" validate:"gt=0,lte=100"`
}

type FinnhubConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Exchange string        `mapstructure:"exchange" validate:"required"`
}

type GeminiConfig struct {
	Model string `mapstructure:"model"`
}

// TradingConfig holds strategy parameters. Percentages are expressed in
// percent (11.75 means 11.75%).
type TradingConfig struct {
	TakeProfitPct         float64 `mapstructure:"take_profit_pct" validate:"gt=0"`
	StopLossPct           float64 `mapstructure:"stop_loss_pct" validate:"gt=0"`
	ReservePerAsset       float64 `mapstructure:"reserve_per_asset" validate:"gte=0"`
	DefaultPortfolioValue float64 `mapstructure:"default_portfolio_value" validate:"gt=0"`
}

type SentimentConfig struct {
	BullishThreshold float64 `mapstructure:"bullish_threshold"`
	BearishThreshold float64 `mapstructure:"bearish_threshold" validate:"ltfield=BullishThreshold"`
	Scorer           string  `mapstructure:"scorer" validate:"oneof=vader gemini"`
	HeadlineLimit    int     `mapstructure:"headline_limit" validate:"gt=0"`
}

type City struct {
	Name string `mapstructure:"name" validate:"required"`
	Zone string `mapstructure:"zone" validate:"required"`
}

type ClockConfig struct {
	Cities            []City `mapstructure:"cities" validate:"dive"`
	MarketZone        string `mapstructure:"market_zone" validate:"required"`
	MarketOpenHour    int    `mapstructure:"market_open_hour" validate:"gte=0,lt=24"`
	MarketOpenMinute  int    `mapstructure:"market_open_minute" validate:"gte=0,lt=60"`
	MarketCloseHour   int    `mapstructure:"market_close_hour" validate:"gte=0,lt=24"`
	MarketCloseMinute int    `mapstructure:"market_close_minute" validate:"gte=0,lt=60"`
}

type DashboardConfig struct {
	Symbols               []string `mapstructure:"symbols" validate:"min=1"`
	DefaultPortfolioValue float64  `mapstructure:"default_portfolio_value" validate:"gt=0"`
	MinPortfolioValue     float64  `mapstructure:"min_portfolio_value" validate:"gt=0"`
	MaxPortfolioValue     float64  `mapstructure:"max_portfolio_value" validate:"gtfield=MinPortfolioValue"`
	DefaultInterval       string   `mapstructure:"default_interval" validate:"required"`
}

// CacheConfig はキャッシュ期間です。IntradayRefreshは分足・時間足を外部APIから取り直す間隔です。
type CacheConfig struct {
	MarketTTL       time.Duration `mapstructure:"market_ttl" validate:"gt=0"`
	HistoryTTL      time.Duration `mapstructure:"history_ttl" validate:"gt=0"`
	IntradayRefresh time.Duration `mapstructure:"intraday_refresh" validate:"gt=0"`
}

type HolidaysConfig struct {
	CacheDir string `mapstructure:"cache_dir" validate:"required"`
}

type CronConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Ingest         string `mapstructure:"ingest"`
	HolidayRefresh string `mapstructure:"holiday_refresh"`
}

// Load reads path (when non-empty) and applies environment overrides on top
// of the built-in defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "./trading.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "trading")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.connect_timeout", "60s")
	v.SetDefault("db.run_migrations", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", "24h")

	v.SetDefault("twelvedata.api_key", "")
	v.SetDefault("twelvedata.base_url", "https://api.twelvedata.com")
	v.SetDefault("twelvedata.timeout", "10s")
	v.SetDefault("twelvedata.requests_per_minute", 8)

	v.SetDefault("newsapi.api_key", "")
	v.SetDefault("newsapi.base_url", "https://newsapi.org/v2")
	v.SetDefault("newsapi.timeout", "10s")
	v.SetDefault("newsapi.page_size", 20)

	v.SetDefault("finnhub.api_key", "")
	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.timeout", "10s")
	v.SetDefault("finnhub.exchange", "US")

	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("trading.take_profit_pct", 11.75)
	v.SetDefault("trading.stop_loss_pct", 4.25)
	v.SetDefault("trading.reserve_per_asset", 100.0)
	v.SetDefault("trading.default_portfolio_value", 1000000.0)

	v.SetDefault("sentiment.bullish_threshold", 0.05)
	v.SetDefault("sentiment.bearish_threshold", -0.3)
	v.SetDefault("sentiment.scorer", "vader")
	v.SetDefault("sentiment.headline_limit", 5)

	v.SetDefault("clock.cities", []map[string]string{
		{"name": "New York", "zone": "America/New_York"},
		{"name": "London", "zone": "Europe/London"},
		{"name": "Tokyo", "zone": "Asia/Tokyo"},
		{"name": "Hong Kong", "zone": "Asia/Hong_Kong"},
		{"name": "Sydney", "zone": "Australia/Sydney"},
		{"name": "Zurich", "zone": "Europe/Zurich"},
	})
	v.SetDefault("clock.market_zone", "America/New_York")
	v.SetDefault("clock.market_open_hour", 9)
	v.SetDefault("clock.market_open_minute", 30)
	v.SetDefault("clock.market_close_hour", 16)
	v.SetDefault("clock.market_close_minute", 0)

	v.SetDefault("dashboard.symbols", []string{"SPY", "GLD"})
	v.SetDefault("dashboard.default_portfolio_value", 10000.0)
	v.SetDefault("dashboard.min_portfolio_value", 100.0)
	v.SetDefault("dashboard.max_portfolio_value", 10000.0)
	v.SetDefault("dashboard.default_interval", "1day")

	v.SetDefault("cache.market_ttl", "5m")
	v.SetDefault("cache.history_ttl", "24h")
	v.SetDefault("cache.intraday_refresh", "5m")

	v.SetDefault("holidays.cache_dir", "./cache")

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.ingest", "0 30 17 * * MON-FRI")
	v.SetDefault("cron.holiday_refresh", "0 0 6 * * *")
}
