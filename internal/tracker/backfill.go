package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/0xmhha/blocketa/internal/util/progress"
	"github.com/0xmhha/blocketa/pkg/types"
)

// Backfill seeds the window with the most recent blocks so the average is
// meaningful from the first publish. It requires a HistorySource; any
// fetch failure aborts the backfill without touching the window.
func (t *Tracker) Backfill(ctx context.Context) error {
	hs, ok := t.source.(HistorySource)
	if !ok {
		return fmt.Errorf("source does not support historical blocks")
	}

	latest, err := hs.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block: %w", err)
	}

	count := uint64(t.config.WindowSize)
	if latest.Number+1 < count {
		count = latest.Number + 1
	}
	startBlock := latest.Number + 1 - count

	t.logger.Info("Backfilling block history", "from", startBlock, "to", latest.Number)

	samples := make([]types.BlockSample, 0, count)
	samples = append(samples, latest)
	var mu sync.Mutex

	bar := progress.New(int(count-1), "backfilling", t.config.ShowProgress)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(t.config.Concurrency)

	for n := startBlock; n < latest.Number; n++ {
		eg.Go(func() error {
			s, err := hs.BlockSampleAt(egCtx, n)
			if err != nil {
				return fmt.Errorf("failed to fetch block %d: %w", n, err)
			}
			mu.Lock()
			samples = append(samples, s)
			mu.Unlock()
			progress.Add(bar, 1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Number < samples[j].Number
	})

	published := false
	t.pollMu.Lock()
	for _, s := range samples {
		if t.window.Append(s) {
			published = true
		}
	}
	var state types.NetworkState
	if published {
		tail, _ := t.window.Tail()
		state = types.NetworkState{
			CurrentBlock: tail.Number,
			AvgBlockTime: t.window.Average(),
			History:      t.window.Samples(),
			LastUpdate:   t.now(),
		}
	}
	t.pollMu.Unlock()

	if published {
		t.publish(state)
	}
	return nil
}
