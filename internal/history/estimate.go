package history

import (
	"github.com/0xmhha/blocketa/pkg/types"
)

// Estimate returns the average block time in seconds over samples.
//
// The value is the elapsed time between the first and last sample divided
// by the number of gaps, not the mean of pairwise deltas. Timestamps are
// used as reported: clock skew in the source may produce a zero or negative
// result and is not corrected here.
func Estimate(samples []types.BlockSample) float64 {
	n := len(samples)
	if n < 2 {
		return types.DefaultBlockTime
	}
	span := samples[n-1].Timestamp - samples[0].Timestamp
	return float64(span) / float64(n-1)
}

// Intervals returns the time between each pair of adjacent samples, in seconds.
// The result has len(samples)-1 entries.
func Intervals(samples []types.BlockSample) []int64 {
	if len(samples) < 2 {
		return nil
	}
	out := make([]int64, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		out[i-1] = samples[i].Timestamp - samples[i-1].Timestamp
	}
	return out
}
