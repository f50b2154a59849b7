package analyzer

import (
	"time"
)

// BlockInfo holds information about a single block in the window
type BlockInfo struct {
	Number    uint64
	Timestamp time.Time
	BlockTime time.Duration // Time since previous block (0 for the first)
}

// AnalysisResult holds statistics over the rolling window
type AnalysisResult struct {
	StartBlock    uint64
	EndBlock      uint64
	Blocks        []BlockInfo
	TotalDuration time.Duration
	AvgBlockTime  float64 // seconds, span/count
	MinBlockTime  time.Duration
	MaxBlockTime  time.Duration
	SkippedBlocks uint64 // block numbers between samples that were never observed
}
