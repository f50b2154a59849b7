package advisory

import (
	"context"
	"errors"
	"time"
)

const (
	// Fallback replaces the advisory text whenever generation fails
	Fallback = "AI analysis currently unavailable, but the block engine is running smooth."
	// Initial is the text shown before any advisory has been requested
	Initial = "Initializing AI analysis..."
	// DefaultModel is the generative model used when none is configured
	DefaultModel = "gemini-3-flash-preview"
)

var (
	// ErrNoGenerator is reported when no generator is configured
	ErrNoGenerator = errors.New("advisory generator not configured")
	// ErrRateLimited is reported when requests exceed the configured rate
	ErrRateLimited = errors.New("advisory rate limit exceeded")
	// ErrEmptyResponse is reported when the generator returns no text
	ErrEmptyResponse = errors.New("advisory response was empty")
)

// Generator produces free text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives advisory outcomes
type Recorder interface {
	RecordAdvisory(outcome string)
}

// Config holds configuration for the advisory service
type Config struct {
	Timeout time.Duration // Per-request deadline
	Rate    float64       // Max requests per second (0 = unlimited)
	Burst   int           // Rate limiter burst size
}

// DefaultConfig returns default advisory configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
		Rate:    0.2, // one request per 5s
		Burst:   2,
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordAdvisory(string) {}
