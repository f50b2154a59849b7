package config

import (
	"strings"
	"testing"
	"time"

	"github.com/0xmhha/blocketa/internal/advisory"
	"github.com/0xmhha/blocketa/pkg/types"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid http url",
			config:  &Config{URL: "http://localhost:8545"},
			wantErr: false,
		},
		{
			name:    "valid websocket url",
			config:  &Config{URL: "wss://bsc-ws-node.nariox.org"},
			wantErr: false,
		},
		{
			name:    "missing url",
			config:  &Config{},
			wantErr: true,
			errMsg:  "url is required",
		},
		{
			name:    "invalid url format",
			config:  &Config{URL: "invalid-url"},
			wantErr: true,
			errMsg:  "url must be a valid HTTP or WebSocket URL",
		},
		{
			name:    "negative interval",
			config:  &Config{URL: "http://localhost:8545", Interval: -time.Second},
			wantErr: true,
			errMsg:  "interval must not be negative",
		},
		{
			name:    "interval too short",
			config:  &Config{URL: "http://localhost:8545", Interval: time.Millisecond},
			wantErr: true,
			errMsg:  "interval must be at least 100ms",
		},
		{
			name:    "window of one",
			config:  &Config{URL: "http://localhost:8545", WindowSize: 1},
			wantErr: true,
			errMsg:  "window must hold at least 2 blocks",
		},
		{
			name:    "negative window",
			config:  &Config{URL: "http://localhost:8545", WindowSize: -4},
			wantErr: true,
			errMsg:  "window must not be negative",
		},
		{
			name:    "negative fetch timeout",
			config:  &Config{URL: "http://localhost:8545", FetchTimeout: -time.Second},
			wantErr: true,
			errMsg:  "fetch-timeout must not be negative",
		},
		{
			name:    "negative advisory rate",
			config:  &Config{URL: "http://localhost:8545", AdvisoryRate: -1},
			wantErr: true,
			errMsg:  "advisory-rate must not be negative",
		},
		{
			name:    "metrics port out of range",
			config:  &Config{URL: "http://localhost:8545", MetricsPort: 70000},
			wantErr: true,
			errMsg:  "metrics-port must be between 0 and 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("ADVISORY_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg := &Config{URL: DefaultURL, MetricsEnabled: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Interval != types.DefaultPollInterval {
		t.Errorf("Interval = %v, want %v", cfg.Interval, types.DefaultPollInterval)
	}
	if cfg.WindowSize != types.DefaultWindowSize {
		t.Errorf("WindowSize = %d, want %d", cfg.WindowSize, types.DefaultWindowSize)
	}
	if cfg.AdvisoryModel != advisory.DefaultModel {
		t.Errorf("AdvisoryModel = %q, want %q", cfg.AdvisoryModel, advisory.DefaultModel)
	}
	if cfg.AdvisoryTimeout != 15*time.Second {
		t.Errorf("AdvisoryTimeout = %v, want 15s", cfg.AdvisoryTimeout)
	}
	if cfg.MetricsPort != 9090 {
		t.Errorf("MetricsPort = %d, want 9090", cfg.MetricsPort)
	}
	if cfg.FetchTimeout != 0 {
		t.Errorf("FetchTimeout = %v, want 0", cfg.FetchTimeout)
	}
	if cfg.AdvisoryEnabled() {
		t.Error("advisory should be disabled without a key")
	}
}

func TestConfig_AdvisoryKeyFromEnv(t *testing.T) {
	t.Setenv("ADVISORY_API_KEY", "")
	t.Setenv("API_KEY", "env-key")

	cfg := &Config{URL: DefaultURL}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.AdvisoryKey != "env-key" {
		t.Errorf("AdvisoryKey = %q, want env-key", cfg.AdvisoryKey)
	}
	if !cfg.AdvisoryEnabled() {
		t.Error("advisory should be enabled")
	}

	// explicit flag wins
	t.Setenv("ADVISORY_API_KEY", "preferred")
	cfg = &Config{URL: DefaultURL, AdvisoryKey: "flag-key"}
	_ = cfg.Validate()
	if cfg.AdvisoryKey != "flag-key" {
		t.Errorf("AdvisoryKey = %q, want flag-key", cfg.AdvisoryKey)
	}
}

func TestConfig_IsWebSocket(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8545", false},
		{"https://bsc-dataseed.binance.org/", false},
		{"ws://localhost:8546", true},
		{"wss://example.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := &Config{URL: tt.url}
			if got := cfg.IsWebSocket(); got != tt.want {
				t.Errorf("IsWebSocket() = %v, want %v", got, tt.want)
			}
		})
	}
}
