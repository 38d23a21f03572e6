package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	envNewsKey    = "NEWSDESK_NEWS_KEY"
	envWeatherKey = "NEWSDESK_WEATHER_KEY"
)

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"` // "sqlite", "memory" or "redis"
	Path        string `yaml:"path,omitempty"`
	RedisAddr   string `yaml:"redis_addr,omitempty"`
	RedisDB     int    `yaml:"redis_db,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

type NewsConfig struct {
	Provider     string   `yaml:"provider"` // "newsapi" or "rss"
	APIKey       string   `yaml:"api_key,omitempty"`
	BaseURL      string   `yaml:"base_url"`
	Country      string   `yaml:"country"`
	BreakingSize int      `yaml:"breaking_size"`
	StoriesSize  int      `yaml:"stories_size"`
	Freshness    string   `yaml:"freshness"`
	Sources      []Source `yaml:"sources"`
}

type WeatherConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url"`
	DefaultCity string `yaml:"default_city"`
	Units       string `yaml:"units"`
	Freshness   string `yaml:"freshness"`
}

type SearchConfig struct {
	Debounce       string `yaml:"debounce"`
	MinLength      int    `yaml:"min_length"`
	MaxResults     int    `yaml:"max_results"`
	MaxDescription int    `yaml:"max_description"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Store    StoreConfig   `yaml:"store"`
	News     NewsConfig    `yaml:"news"`
	Weather  WeatherConfig `yaml:"weather"`
	Search   SearchConfig  `yaml:"search"`
	Metrics  MetricsConfig `yaml:"metrics,omitempty"`
}

// NewsKey returns the NewsAPI key from config or the environment.
func (c *Config) NewsKey() string {
	if c.News.APIKey != "" {
		return c.News.APIKey
	}
	return os.Getenv(envNewsKey)
}

// WeatherKey returns the OpenWeatherMap key from config or the environment.
func (c *Config) WeatherKey() string {
	if c.Weather.APIKey != "" {
		return c.Weather.APIKey
	}
	return os.Getenv(envWeatherKey)
}

// UseRSS reports whether headlines come from RSS feeds instead of NewsAPI.
// Without a NewsAPI key the RSS feeds are the only option.
func (c *Config) UseRSS() bool {
	return c.News.Provider == "rss" || c.NewsKey() == ""
}

func (c *Config) NewsFreshness() time.Duration {
	return parseDuration(c.News.Freshness, 5*time.Minute)
}

func (c *Config) WeatherFreshness() time.Duration {
	return parseDuration(c.Weather.Freshness, 10*time.Minute)
}

func (c *Config) SearchDebounce() time.Duration {
	return parseDuration(c.Search.Debounce, 500*time.Millisecond)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.News.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsdesk", "config.yaml")
}

// StorePath returns the SQLite path, honoring an explicit store.path.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(xdg.CacheHome, "newsdesk", "newsdesk.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "newsdesk", "newsdesk.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the XDG default), layered over the
// embedded defaults. A missing file is created from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

var (
	validDrivers   = map[string]bool{"sqlite": true, "memory": true, "redis": true}
	validProviders = map[string]bool{"newsapi": true, "rss": true}
	validUnits     = map[string]bool{"metric": true, "imperial": true, "standard": true}
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

func validate(cfg *Config) error {
	if !validLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("log_level: unknown level %q (valid: debug, info, warn, error)", cfg.LogLevel)
	}
	if !validDrivers[cfg.Store.Driver] {
		return fmt.Errorf("store.driver: unknown driver %q (valid: sqlite, memory, redis)", cfg.Store.Driver)
	}
	if cfg.Store.Driver == "redis" && cfg.Store.RedisAddr == "" {
		return fmt.Errorf("store.redis_addr is required for the redis driver")
	}
	if !validProviders[cfg.News.Provider] {
		return fmt.Errorf("news.provider: unknown provider %q (valid: newsapi, rss)", cfg.News.Provider)
	}
	if !validUnits[cfg.Weather.Units] {
		return fmt.Errorf("weather.units: unknown units %q (valid: metric, imperial, standard)", cfg.Weather.Units)
	}
	if cfg.Weather.DefaultCity == "" {
		return fmt.Errorf("weather.default_city is required")
	}
	for name, raw := range map[string]string{"news.base_url": cfg.News.BaseURL, "weather.base_url": cfg.Weather.BaseURL} {
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if cfg.Search.MinLength < 1 {
		return fmt.Errorf("search.min_length must be at least 1, got %d", cfg.Search.MinLength)
	}
	if cfg.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be at least 1, got %d", cfg.Search.MaxResults)
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.News.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		if err := validateHTTPURL(s.URL); err != nil {
			return fmt.Errorf("source %q: %w", s.Name, err)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
