package types

import (
	"time"
)

const (
	// DefaultWindowSize is the number of recent blocks kept in the rolling history
	DefaultWindowSize = 12
	// DefaultBlockTime is the nominal block time in seconds used until two samples exist
	DefaultBlockTime = 3.0
	// DefaultPollInterval is how often the latest block is fetched
	DefaultPollInterval = 3 * time.Second
)

// BlockSample is a (number, timestamp) pair observed from the node
type BlockSample struct {
	Number    uint64 `json:"number"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

// Time returns the sample timestamp as a time.Time
func (b BlockSample) Time() time.Time {
	return time.Unix(b.Timestamp, 0)
}

// NetworkState is a read-only snapshot published after every window change
type NetworkState struct {
	CurrentBlock uint64        `json:"current_block"`
	AvgBlockTime float64       `json:"avg_block_time"` // seconds
	History      []BlockSample `json:"history"`
	LastUpdate   time.Time     `json:"last_update"`
}

// ProjectionResult estimates when TargetBlock will be produced
type ProjectionResult struct {
	TargetBlock      uint64    `json:"target_block"`
	BlocksRemaining  uint64    `json:"blocks_remaining"`
	EstimatedSeconds float64   `json:"estimated_seconds"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
}

// Summary is the numeric context handed to the advisory service
type Summary struct {
	CurrentBlock    uint64
	AvgBlockTime    float64
	TargetBlock     uint64
	BlocksRemaining uint64
}

// SummaryOf builds an advisory summary from a state and a projection
func SummaryOf(state NetworkState, p ProjectionResult) Summary {
	return Summary{
		CurrentBlock:    state.CurrentBlock,
		AvgBlockTime:    state.AvgBlockTime,
		TargetBlock:     p.TargetBlock,
		BlocksRemaining: p.BlocksRemaining,
	}
}
