// Package history keeps the rolling window of recent blocks and derives
// the average block time from it.
package history

import (
	"github.com/0xmhha/blocketa/pkg/types"
)

// Window is a capacity-bounded sequence of block samples with strictly
// increasing block numbers. The oldest sample is evicted first.
//
// Window is not safe for concurrent use; it is owned by the poll loop.
type Window struct {
	samples  []types.BlockSample
	capacity int
}

// NewWindow creates a window holding at most capacity samples
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = types.DefaultWindowSize
	}
	return &Window{
		samples:  make([]types.BlockSample, 0, capacity+1),
		capacity: capacity,
	}
}

// Append adds s at the tail if the window is empty or s advances the tail.
// It reports whether the window changed. Samples that do not advance the
// tail are dropped without error.
func (w *Window) Append(s types.BlockSample) bool {
	if n := len(w.samples); n > 0 && s.Number <= w.samples[n-1].Number {
		return false
	}

	w.samples = append(w.samples, s)
	if over := len(w.samples) - w.capacity; over > 0 {
		// shift in place so the backing array does not grow
		copy(w.samples, w.samples[over:])
		w.samples = w.samples[:w.capacity]
	}
	return true
}

// Tail returns the newest sample
func (w *Window) Tail() (types.BlockSample, bool) {
	if len(w.samples) == 0 {
		return types.BlockSample{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Samples returns a copy of the window contents, oldest first
func (w *Window) Samples() []types.BlockSample {
	out := make([]types.BlockSample, len(w.samples))
	copy(out, w.samples)
	return out
}

// Len returns the number of samples held
func (w *Window) Len() int {
	return len(w.samples)
}

// Cap returns the maximum number of samples
func (w *Window) Cap() int {
	return w.capacity
}

// Average returns Estimate over the current contents
func (w *Window) Average() float64 {
	return Estimate(w.samples)
}
