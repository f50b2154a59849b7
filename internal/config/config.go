package config

import (
	"errors"
	"os"
	"regexp"
	"time"

	"github.com/0xmhha/blocketa/internal/advisory"
	"github.com/0xmhha/blocketa/pkg/types"
)

// DefaultURL is the public BSC mainnet endpoint
const DefaultURL = "https://bsc-dataseed.binance.org/"

// Environment variables consulted for the advisory API key, in order
var apiKeyEnv = []string{"ADVISORY_API_KEY", "API_KEY"}

// Config holds all configuration for the tracker
type Config struct {
	// RPC connection
	URL          string
	FetchTimeout time.Duration

	// Poll loop
	Interval   time.Duration
	WindowSize int
	Backfill   bool

	// Projection
	Target string

	// Advisory
	AdvisoryKey     string
	AdvisoryModel   string
	AdvisoryTimeout time.Duration
	AdvisoryRate    float64

	// Output
	Verbose     bool
	ShowHistory bool

	// Prometheus metrics
	MetricsEnabled bool
	MetricsPort    int
}

var (
	httpRegex = regexp.MustCompile(`^https?://`)
	wsRegex   = regexp.MustCompile(`^wss?://`)
)

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate URL
	if c.URL == "" {
		return errors.New("url is required")
	}
	if !httpRegex.MatchString(c.URL) && !wsRegex.MatchString(c.URL) {
		return errors.New("url must be a valid HTTP or WebSocket URL")
	}

	// Poll loop
	if c.Interval < 0 {
		return errors.New("interval must not be negative")
	}
	if c.Interval == 0 {
		c.Interval = types.DefaultPollInterval
	}
	if c.Interval < 100*time.Millisecond {
		return errors.New("interval must be at least 100ms")
	}
	if c.WindowSize < 0 {
		return errors.New("window must not be negative")
	}
	if c.WindowSize == 0 {
		c.WindowSize = types.DefaultWindowSize
	}
	if c.WindowSize < 2 {
		return errors.New("window must hold at least 2 blocks")
	}
	if c.FetchTimeout < 0 {
		return errors.New("fetch-timeout must not be negative")
	}

	// Advisory
	if c.AdvisoryKey == "" {
		for _, name := range apiKeyEnv {
			if v := os.Getenv(name); v != "" {
				c.AdvisoryKey = v
				break
			}
		}
	}
	if c.AdvisoryModel == "" {
		c.AdvisoryModel = advisory.DefaultModel
	}
	if c.AdvisoryTimeout < 0 {
		return errors.New("advisory-timeout must not be negative")
	}
	if c.AdvisoryTimeout == 0 {
		c.AdvisoryTimeout = 15 * time.Second
	}
	if c.AdvisoryRate < 0 {
		return errors.New("advisory-rate must not be negative")
	}

	// Set default metrics port
	if c.MetricsEnabled && c.MetricsPort == 0 {
		c.MetricsPort = 9090
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.New("metrics-port must be between 0 and 65535")
	}

	return nil
}

// AdvisoryEnabled returns true if an advisory API key is available
func (c *Config) AdvisoryEnabled() bool {
	return c.AdvisoryKey != ""
}

// IsWebSocket returns true if the URL is a WebSocket URL
func (c *Config) IsWebSocket() bool {
	return wsRegex.MatchString(c.URL)
}
