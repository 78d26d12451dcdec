package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Browser   BrowserConfig   `toml:"browser"`
	Match     MatchConfig     `toml:"match"`
	Cache     CacheConfig     `toml:"cache"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	RequestTimeout int    `toml:"request_timeout"` // Seconds; bounds a whole conversion batch
	ReadTimeout    int    `toml:"read_timeout"`
	WriteTimeout   int    `toml:"write_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrowserConfig contains browser session settings.
type BrowserConfig struct {
	Headless          bool   `toml:"headless"`
	Capacity          int    `toml:"capacity"`
	AcquireTimeout    int    `toml:"acquire_timeout"`    // Seconds
	NavigationTimeout int    `toml:"navigation_timeout"` // Seconds
	UserAgent         string `toml:"user_agent"`
}

// MatchConfig contains scoring policy settings for the match engine.
type MatchConfig struct {
	TitleWeight       float64 `toml:"title_weight"`
	ArtistWeight      float64 `toml:"artist_weight"`
	MinScore          float64 `toml:"min_score"`
	DurationPenalty   float64 `toml:"duration_penalty"`
	MaxDurationDelta  int     `toml:"max_duration_delta"` // Seconds
	SearchesPerSecond float64 `toml:"searches_per_second"`
}

// CacheConfig contains playlist extraction cache settings.
type CacheConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	TTL          int    `toml:"ttl"` // Seconds
}

// TTLDuration returns the cache TTL as a [time.Duration].
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// RateLimitConfig contains throttling detection settings.
//
// The exact detection signal varies by platform, so both the page-content
// markers and the latency threshold are configurable rather than hardcoded.
type RateLimitConfig struct {
	Markers          []string `toml:"markers"`
	LatencyThreshold int      `toml:"latency_threshold"` // Seconds
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks configuration values that would otherwise fail deep inside
// the pipeline.
func (c *Config) Validate() error {
	if c.Browser.Capacity < 1 {
		return fmt.Errorf("%w: browser.capacity must be at least 1", ErrInvalidConfig)
	}
	if c.Match.TitleWeight < 0 || c.Match.ArtistWeight < 0 {
		return fmt.Errorf("%w: match weights must be non-negative", ErrInvalidConfig)
	}
	if c.Match.MinScore < 0 || c.Match.MinScore > 1 {
		return fmt.Errorf("%w: match.min_score must be in [0, 1]", ErrInvalidConfig)
	}
	if c.Match.SearchesPerSecond <= 0 {
		return fmt.Errorf("%w: match.searches_per_second must be positive", ErrInvalidConfig)
	}
	return nil
}
