package config

import (
	"errors"
	"fmt"
	"time"

	"golang-stock-sentiment/pkg/config"
)

// Supported news providers.
const (
	ProviderNewsAPI   = "newsapi"
	ProviderGoogleRSS = "google_rss"
)

// News selects the provider used by the fetcher.
type News struct {
	Provider string `mapstructure:"provider"`
}

// NewsAPI holds the configuration for the NewsAPI "everything" endpoint.
type NewsAPI struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	PageSize            int           `mapstructure:"page_size"`
	Language            string        `mapstructure:"language"`
	SortBy              string        `mapstructure:"sort_by"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// GoogleRSS holds the configuration for the Google News RSS search feed.
type GoogleRSS struct {
	BaseURL  string        `mapstructure:"base_url"`
	Params   string        `mapstructure:"params"`
	MaxItems int           `mapstructure:"max_items"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Sentiment holds the business rules of the news sentiment endpoint.
type Sentiment struct {
	MaxNewsAge     time.Duration       `mapstructure:"max_news_age"`
	MaxHeadlines   int                 `mapstructure:"max_headlines"`
	ClassifierMemo time.Duration       `mapstructure:"classifier_memo"`
	Aliases        map[string][]string `mapstructure:"aliases"`
}

// Metrics holds Prometheus settings.
type Metrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Config holds the full configuration for the sentiment service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	News      News            `mapstructure:"news"`
	NewsAPI   NewsAPI         `mapstructure:"newsapi"`
	GoogleRSS GoogleRSS       `mapstructure:"google_rss"`
	Sentiment Sentiment       `mapstructure:"sentiment"`
	Metrics   Metrics         `mapstructure:"metrics"`
}

// MaxHeadlinesLimit is the most headlines a single response may carry.
const MaxHeadlinesLimit = 3

// ErrMissingAPIKey is returned by Validate when the NewsAPI key is not configured.
var ErrMissingAPIKey = errors.New("missing newsapi.api_key (NEWSAPI_API_KEY or NEWSAPI_KEY)")

// EnvBindings lists keys that also accept legacy environment variable names.
func EnvBindings() []config.EnvBinding {
	return []config.EnvBinding{
		{Key: "newsapi.api_key", Envs: []string{"NEWSAPI_API_KEY", "NEWSAPI_KEY"}},
	}
}

// Defaults lists every key with its default so it can be supplied through the environment alone.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":    "stock-news-sentiment",
		"app.env":     "development",
		"app.version": "1.0",

		"logger.level":    "info",
		"logger.encoding": "json",

		"database.host":              "localhost",
		"database.port":              5432,
		"database.user":              "postgres",
		"database.password":          "postgres",
		"database.name":              "stock_news",
		"database.ssl_mode":          "disable",
		"database.time_zone":         "UTC",
		"database.max_idle_conns":    5,
		"database.max_open_conns":    20,
		"database.conn_max_lifetime": "30m",
		"database.log_level":         "silent",

		"redis.enabled":        false,
		"redis.host":           "localhost",
		"redis.port":           6379,
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      10,
		"redis.stream_max_len": 1000,

		"api.host": "0.0.0.0",
		"api.port": 8000,

		"news.provider": ProviderNewsAPI,

		"newsapi.base_url":               "https://newsapi.org/v2/everything",
		"newsapi.api_key":                "",
		"newsapi.page_size":              100,
		"newsapi.language":               "en",
		"newsapi.sort_by":                "publishedAt",
		"newsapi.timeout":                "15s",
		"newsapi.max_request_per_minute": 0,

		"google_rss.base_url":  "https://news.google.com/rss/search",
		"google_rss.params":    "hl=en-IN&gl=IN&ceid=IN:en",
		"google_rss.max_items": 100,
		"google_rss.timeout":   "15s",

		"sentiment.max_news_age":    "336h",
		"sentiment.max_headlines":   MaxHeadlinesLimit,
		"sentiment.classifier_memo": "1h",

		"metrics.enabled":   true,
		"metrics.namespace": "stock_news_sentiment",
	}
}

// Load loads the sentiment service configuration from the given path and validates it.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults(), EnvBindings()...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that must be present before the service starts.
func (c *Config) Validate() error {
	switch c.News.Provider {
	case ProviderNewsAPI:
		if c.NewsAPI.APIKey == "" {
			return ErrMissingAPIKey
		}
	case ProviderGoogleRSS:
	default:
		return fmt.Errorf("unknown news provider %q", c.News.Provider)
	}
	if c.Sentiment.MaxHeadlines <= 0 || c.Sentiment.MaxHeadlines > MaxHeadlinesLimit {
		return fmt.Errorf("sentiment.max_headlines must be between 1 and %d, got %d", MaxHeadlinesLimit, c.Sentiment.MaxHeadlines)
	}
	if c.Sentiment.MaxNewsAge <= 0 {
		return errors.New("sentiment.max_news_age must be positive")
	}
	return nil
}
