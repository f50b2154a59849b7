// Package analyzer summarises the rolling window for display: per-block
// intervals, spread and export.
package analyzer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/0xmhha/blocketa/internal/history"
	"github.com/0xmhha/blocketa/pkg/types"
)

// Analyze computes interval statistics for the given samples, which must
// be ordered by block number as the window keeps them.
func Analyze(samples []types.BlockSample) *AnalysisResult {
	if len(samples) == 0 {
		return &AnalysisResult{AvgBlockTime: types.DefaultBlockTime}
	}

	result := &AnalysisResult{
		StartBlock:   samples[0].Number,
		EndBlock:     samples[len(samples)-1].Number,
		Blocks:       make([]BlockInfo, len(samples)),
		AvgBlockTime: history.Estimate(samples),
	}

	intervals := history.Intervals(samples)
	for i, s := range samples {
		info := BlockInfo{Number: s.Number, Timestamp: s.Time()}
		if i > 0 {
			info.BlockTime = time.Duration(intervals[i-1]) * time.Second
			if gap := s.Number - samples[i-1].Number; gap > 1 {
				result.SkippedBlocks += gap - 1
			}
		}
		result.Blocks[i] = info
	}

	if len(samples) > 1 {
		result.TotalDuration = samples[len(samples)-1].Time().Sub(samples[0].Time())
		result.MinBlockTime = result.Blocks[1].BlockTime
		result.MaxBlockTime = result.Blocks[1].BlockTime
		for _, b := range result.Blocks[2:] {
			if b.BlockTime < result.MinBlockTime {
				result.MinBlockTime = b.BlockTime
			}
			if b.BlockTime > result.MaxBlockTime {
				result.MaxBlockTime = b.BlockTime
			}
		}
	}

	return result
}

// PrintTable prints the analysis results as a table
func PrintTable(w io.Writer, result *AnalysisResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Block", "Time", "Block Time"})
	table.SetBorder(true)
	table.SetAutoFormatHeaders(false)

	for _, block := range result.Blocks {
		blockTime := "-"
		if block.BlockTime != 0 {
			blockTime = fmt.Sprintf("%.2fs", block.BlockTime.Seconds())
		}

		table.Append([]string{
			fmt.Sprintf("%d", block.Number),
			block.Timestamp.UTC().Format("15:04:05"),
			blockTime,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d blocks", len(result.Blocks)),
		fmt.Sprintf("%.0fs", result.TotalDuration.Seconds()),
		fmt.Sprintf("Avg: %.2fs", result.AvgBlockTime),
	})

	table.Render()

	fmt.Fprintf(w, "  Block Range: %d - %d\n", result.StartBlock, result.EndBlock)
	fmt.Fprintf(w, "  Min/Max Block Time: %.0fs / %.0fs\n", result.MinBlockTime.Seconds(), result.MaxBlockTime.Seconds())
	if result.SkippedBlocks > 0 {
		fmt.Fprintf(w, "  Unobserved Blocks: %d\n", result.SkippedBlocks)
	}
}

// ExportCSV writes the per-block rows as CSV
func ExportCSV(w io.Writer, result *AnalysisResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Block", "Timestamp", "BlockTime"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, block := range result.Blocks {
		row := []string{
			fmt.Sprintf("%d", block.Number),
			block.Timestamp.UTC().Format(time.RFC3339),
			fmt.Sprintf("%.0f", block.BlockTime.Seconds()),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
