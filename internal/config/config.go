package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Poll    PollConfig    `yaml:"poll"`
	Refresh RefreshConfig `yaml:"refresh"`
	Server  ServerConfig  `yaml:"server"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

type FeedConfig struct {
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
	// RequestTimeout of zero leaves requests unbounded.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// RefreshConfig throttles the manual refresh control.
type RefreshConfig struct {
	MinInterval time.Duration `yaml:"min_interval"`
	Burst       int           `yaml:"burst"`
}

type ServerConfig struct {
	// Listen serves the HTML page and /metrics when set, e.g. ":8090".
	Listen string `yaml:"listen"`
}

type OutputConfig struct {
	HTMLPath  string `yaml:"html_path"`
	Directory string `yaml:"directory"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultBaseURL  = "http://localhost:5000"
	defaultPath     = "/api/actions"
	defaultInterval = 15 * time.Second
)

func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			BaseURL: defaultBaseURL,
			Path:    defaultPath,
		},
		Poll: PollConfig{
			Interval: defaultInterval,
		},
		Refresh: RefreshConfig{
			MinInterval: time.Second,
			Burst:       1,
		},
		Output: OutputConfig{
			Directory: "reports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file over the defaults, then applies the
// environment. An empty path or a missing file means defaults only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ACTIONFEED_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("ACTIONFEED_PATH"); v != "" {
		c.Feed.Path = v
	}
	if v := os.Getenv("ACTIONFEED_REQUEST_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACTIONFEED_REQUEST_TIMEOUT: %w", err)
		}
		c.Feed.RequestTimeout = d
	}
	if v := os.Getenv("ACTIONFEED_INTERVAL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACTIONFEED_INTERVAL: %w", err)
		}
		c.Poll.Interval = d
	}
	if v := os.Getenv("ACTIONFEED_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("ACTIONFEED_HTML"); v != "" {
		c.Output.HTMLPath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	u, err := url.Parse(c.Feed.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("feed.base_url must be an absolute http(s) URL, got %q", c.Feed.BaseURL)
	}
	if c.Feed.RequestTimeout < 0 {
		return fmt.Errorf("feed.request_timeout must not be negative")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be > 0")
	}
	if c.Refresh.MinInterval < 0 {
		return fmt.Errorf("refresh.min_interval must not be negative")
	}
	if c.Refresh.Burst < 1 {
		return fmt.Errorf("refresh.burst must be >= 1")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be 'json' or 'text'")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

// parseDuration accepts Go durations ("15s", "1m") or plain seconds.
func parseDuration(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("must be non-negative")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative")
	}
	return d, nil
}
