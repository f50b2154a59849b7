package tracker

import (
	"context"
	"time"

	"github.com/0xmhha/blocketa/pkg/types"
)

// Source yields the latest block sample on demand
type Source interface {
	LatestBlock(ctx context.Context) (types.BlockSample, error)
}

// HistorySource can also read arbitrary past blocks; used for backfill
type HistorySource interface {
	Source
	BlockSampleAt(ctx context.Context, number uint64) (types.BlockSample, error)
}

// Recorder receives poll loop measurements
type Recorder interface {
	RecordPoll(latency time.Duration)
	RecordPollFailure()
	RecordStale()
	RecordState(state types.NetworkState)
}

// Config holds configuration for the tracker
type Config struct {
	Interval     time.Duration // Poll period
	WindowSize   int           // Rolling history capacity
	FetchTimeout time.Duration // Per-fetch deadline (0 = none)
	Backfill     bool          // Seed the window with recent blocks on Start
	Concurrency  int           // Parallel fetches during backfill
	ShowProgress bool          // Render a progress bar during backfill
}

// DefaultConfig returns default tracker configuration
func DefaultConfig() *Config {
	return &Config{
		Interval:     types.DefaultPollInterval,
		WindowSize:   types.DefaultWindowSize,
		FetchTimeout: 0,
		Backfill:     false,
		Concurrency:  4,
		ShowProgress: false,
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordPoll(time.Duration)       {}
func (noopRecorder) RecordPollFailure()             {}
func (noopRecorder) RecordStale()                   {}
func (noopRecorder) RecordState(types.NetworkState) {}
