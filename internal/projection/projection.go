package projection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/blocketa/internal/util/mathutil"
	"github.com/0xmhha/blocketa/pkg/types"
)

// Target is the result of parsing user input as a block number
type Target struct {
	Block uint64
	Valid bool
}

// ParseTarget parses raw input text as a block number.
// Surrounding whitespace is ignored; anything else that is not a
// non-negative base-10 integer yields an invalid Target.
func ParseTarget(input string) Target {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return Target{}
	}
	return Target{Block: n, Valid: true}
}

// Project estimates when the target block will be produced given the
// current block and average block time. It returns false when the input
// is not a block number or is not ahead of currentBlock.
func Project(currentBlock uint64, avgBlockTime float64, input string, now time.Time) (types.ProjectionResult, bool) {
	target := ParseTarget(input)
	if !target.Valid || target.Block <= currentBlock {
		return types.ProjectionResult{}, false
	}

	remaining := target.Block - currentBlock
	seconds := float64(remaining) * avgBlockTime

	return types.ProjectionResult{
		TargetBlock:      target.Block,
		BlocksRemaining:  remaining,
		EstimatedSeconds: seconds,
		EstimatedArrival: now.Add(mathutil.SecondsToDuration(seconds)),
	}, true
}

// FormatDuration renders seconds as "1d 2h 3m 4s". Day, hour and minute
// segments appear only when non-zero; seconds are always shown last.
// Fractional seconds are truncated.
func FormatDuration(seconds float64) string {
	var total int64
	switch {
	case math.IsNaN(seconds) || seconds <= 0:
		total = 0
	case seconds >= math.MaxInt64:
		total = math.MaxInt64
	default:
		total = int64(math.Floor(seconds))
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	mins := (total % 3600) / 60
	secs := total % 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))

	return strings.Join(parts, " ")
}
