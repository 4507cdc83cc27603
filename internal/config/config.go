package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the site scraped when no base URL is configured.
const DefaultBaseURL = "https://anichin.cafe"

// DefaultUserAgents is the browser User-Agent pool rotated across requests.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
}

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level           string `mapstructure:"level"`
	Format          string `mapstructure:"format"`
	Path            string `mapstructure:"path"`
	MaxSizeMB       int    `mapstructure:"max_size_mb"`
	MaxBackups      int    `mapstructure:"max_backups"`
	MaxAgeDays      int    `mapstructure:"max_age_days"`
	Compress        bool   `mapstructure:"compress"`
	EnableStreaming bool   `mapstructure:"enable_streaming"`
	BufferSize      int    `mapstructure:"buffer_size"`
}

// ScraperConfig holds upstream site and HTTP client configuration.
type ScraperConfig struct {
	BaseURL          string            `mapstructure:"base_url"`
	UserAgent        string            `mapstructure:"user_agent"`
	UserAgents       []string          `mapstructure:"user_agents"`
	Headers          map[string]string `mapstructure:"headers"`
	Timeout          time.Duration     `mapstructure:"timeout"`
	MaxRetries       int               `mapstructure:"max_retries"`
	RetryDelay       time.Duration     `mapstructure:"retry_delay"`
	RequestDelay     time.Duration     `mapstructure:"request_delay"`
	Proxy            ProxyConfig       `mapstructure:"proxy"`
	CloudflareBypass bool              `mapstructure:"cloudflare_bypass"`
	SelectorsPath    string            `mapstructure:"selectors_path"`
}

// ProxyConfig describes an optional outbound proxy.
type ProxyConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Protocol string `mapstructure:"protocol"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SchedulerConfig holds background task configuration.
type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	UpstreamHealthCron string `mapstructure:"upstream_health_cron"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			BufferSize: 1000,
		},
		Scraper: DefaultScraper(),
		Scheduler: SchedulerConfig{
			Enabled:            true,
			UpstreamHealthCron: "*/15 * * * *",
		},
	}
}

// DefaultScraper returns the scraper settings used when nothing is configured.
func DefaultScraper() ScraperConfig {
	base := EmbeddedBaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return ScraperConfig{
		BaseURL:      base,
		UserAgents:   append([]string(nil), DefaultUserAgents...),
		Headers:      map[string]string{},
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		RequestDelay: time.Second,
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.anichin")
	}

	v.SetEnvPrefix("ANICHIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Scraper.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", false)
	v.SetDefault("logging.enable_streaming", false)
	v.SetDefault("logging.buffer_size", d.Logging.BufferSize)

	v.SetDefault("scraper.base_url", d.Scraper.BaseURL)
	v.SetDefault("scraper.user_agent", "")
	v.SetDefault("scraper.user_agents", d.Scraper.UserAgents)
	v.SetDefault("scraper.headers", map[string]string{})
	v.SetDefault("scraper.timeout", d.Scraper.Timeout)
	v.SetDefault("scraper.max_retries", d.Scraper.MaxRetries)
	v.SetDefault("scraper.retry_delay", d.Scraper.RetryDelay)
	v.SetDefault("scraper.request_delay", d.Scraper.RequestDelay)
	v.SetDefault("scraper.proxy.host", "")
	v.SetDefault("scraper.proxy.port", 0)
	v.SetDefault("scraper.proxy.protocol", "http")
	v.SetDefault("scraper.proxy.username", "")
	v.SetDefault("scraper.proxy.password", "")
	v.SetDefault("scraper.cloudflare_bypass", false)
	v.SetDefault("scraper.selectors_path", "")

	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("scheduler.upstream_health_cron", d.Scheduler.UpstreamHealthCron)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks scraper settings that cannot be defaulted away.
func (c *ScraperConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("scraper.base_url must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must be >= 0, got %d", c.MaxRetries)
	}
	switch strings.ToLower(c.Proxy.Protocol) {
	case "", "http", "https", "socks", "socks5":
	default:
		return fmt.Errorf("scraper.proxy.protocol %q is not supported", c.Proxy.Protocol)
	}
	return nil
}

// Enabled reports whether a proxy host is configured.
func (p ProxyConfig) Enabled() bool {
	return p.Host != ""
}

// URL renders the proxy as a URL string. "socks" is treated as "socks5".
func (p ProxyConfig) URL() string {
	protocol := strings.ToLower(p.Protocol)
	switch protocol {
	case "", "http":
		protocol = "http"
	case "socks":
		protocol = "socks5"
	}
	u := url.URL{Scheme: protocol, Host: p.Host}
	if p.Port > 0 {
		u.Host = net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	}
	switch {
	case p.Username != "" && p.Password != "":
		u.User = url.UserPassword(p.Username, p.Password)
	case p.Username != "":
		u.User = url.User(p.Username)
	}
	return u.String()
}
