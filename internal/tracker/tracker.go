// Package tracker drives the poll loop: it fetches the latest block on a
// fixed period, feeds the rolling history and publishes network state
// snapshots to subscribers.
package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/0xmhha/blocketa/internal/history"
	"github.com/0xmhha/blocketa/pkg/types"
)

// ErrAlreadyRunning is returned by Start on a running tracker
var ErrAlreadyRunning = errors.New("tracker already running")

// Tracker owns the rolling window and republishes derived state on progress
type Tracker struct {
	source    Source
	config    *Config
	scheduler Scheduler
	now       func() time.Time
	logger    log.Logger
	recorder  Recorder

	// window is only touched while pollMu is held
	pollMu sync.Mutex
	window *history.Window

	state atomic.Pointer[types.NetworkState]

	subMu       sync.Mutex
	subscribers []func(types.NetworkState)

	runMu  sync.Mutex
	handle Handle
	cancel context.CancelFunc
}

// New creates a new Tracker instance
func New(source Source, config *Config) *Tracker {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Interval <= 0 {
		config.Interval = types.DefaultPollInterval
	}
	if config.WindowSize <= 0 {
		config.WindowSize = types.DefaultWindowSize
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Tracker{
		source:    source,
		config:    config,
		scheduler: NewTickerScheduler(),
		now:       time.Now,
		logger:    log.Root(),
		recorder:  noopRecorder{},
		window:    history.NewWindow(config.WindowSize),
	}
}

// WithScheduler replaces the wall-clock scheduler
func (t *Tracker) WithScheduler(s Scheduler) *Tracker {
	t.scheduler = s
	return t
}

// WithClock sets the clock used for LastUpdate
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// WithLogger sets the logger
func (t *Tracker) WithLogger(l log.Logger) *Tracker {
	t.logger = l
	return t
}

// WithRecorder sets the metrics sink
func (t *Tracker) WithRecorder(r Recorder) *Tracker {
	if r == nil {
		r = noopRecorder{}
	}
	t.recorder = r
	return t
}

// Subscribe registers fn to receive every published state. Callbacks run
// synchronously on the poll loop, in registration order.
func (t *Tracker) Subscribe(fn func(types.NetworkState)) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

// Start begins polling. The first poll happens immediately.
func (t *Tracker) Start(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	if t.config.Backfill {
		if err := t.Backfill(runCtx); err != nil {
			t.logger.Warn("Backfill failed, continuing with live polling", "err", err)
		}
	}

	t.logger.Info("Block tracker started", "interval", t.config.Interval, "window", t.config.WindowSize)
	t.handle = t.scheduler.Start(t.config.Interval, func() {
		t.Poll(runCtx)
	})
	return nil
}

// Stop cancels polling. No poll starts after Stop returns.
func (t *Tracker) Stop() {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.cancel == nil {
		return
	}
	t.cancel()
	t.scheduler.Cancel(t.handle)
	t.cancel = nil
	t.logger.Info("Block tracker stopped")
}

// Running reports whether Start has been called without a matching Stop
func (t *Tracker) Running() bool {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	return t.cancel != nil
}

// State returns the last published snapshot. The boolean is false until
// the first sample has been accepted.
func (t *Tracker) State() (types.NetworkState, bool) {
	s := t.state.Load()
	if s == nil {
		return types.NetworkState{}, false
	}
	return *s, true
}

// Poll performs one tick: fetch, then append and publish if the sample
// advances the window. It reports whether a new state was published.
// Fetch errors are logged and leave all state untouched.
func (t *Tracker) Poll(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	fetchCtx := ctx
	if t.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, t.config.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	sample, err := t.source.LatestBlock(fetchCtx)
	t.recorder.RecordPoll(time.Since(start))
	if err != nil {
		t.recorder.RecordPollFailure()
		if ctx.Err() == nil {
			t.logger.Warn("Failed to fetch latest block", "err", err)
		}
		return false
	}

	return t.accept(sample)
}

func (t *Tracker) accept(sample types.BlockSample) bool {
	t.pollMu.Lock()
	if !t.window.Append(sample) {
		t.pollMu.Unlock()
		t.recorder.RecordStale()
		t.logger.Debug("Sample did not advance window", "number", sample.Number)
		return false
	}
	state := types.NetworkState{
		CurrentBlock: sample.Number,
		AvgBlockTime: t.window.Average(),
		History:      t.window.Samples(),
		LastUpdate:   t.now(),
	}
	t.pollMu.Unlock()

	t.publish(state)
	return true
}

func (t *Tracker) publish(state types.NetworkState) {
	t.state.Store(&state)
	t.recorder.RecordState(state)
	t.logger.Debug("Published network state",
		"block", state.CurrentBlock, "avg", state.AvgBlockTime, "samples", len(state.History))

	t.subMu.Lock()
	subs := make([]func(types.NetworkState), len(t.subscribers))
	copy(subs, t.subscribers)
	t.subMu.Unlock()

	for _, fn := range subs {
		// each subscriber gets its own history slice
		s := state
		s.History = append([]types.BlockSample(nil), state.History...)
		fn(s)
	}
}
