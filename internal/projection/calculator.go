package projection

import (
	"sync"
	"time"

	"github.com/0xmhha/blocketa/pkg/types"
)

// Calculator recomputes the projection whenever the network state or the
// target input changes. The arrival time is always derived from the clock
// at recomputation time.
type Calculator struct {
	mu     sync.Mutex
	now    func() time.Time
	state  types.NetworkState
	ready  bool
	input  string
	result types.ProjectionResult
	valid  bool

	onChange func(types.ProjectionResult, bool)
}

// NewCalculator creates a calculator using now as its clock (time.Now if nil)
func NewCalculator(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// OnChange registers fn to be called after every recomputation
func (c *Calculator) OnChange(fn func(types.ProjectionResult, bool)) *Calculator {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
	return c
}

// UpdateState records a newly published network state and recomputes
func (c *Calculator) UpdateState(state types.NetworkState) {
	c.mu.Lock()
	c.state = state
	c.ready = true
	c.recomputeLocked()
	result, valid, fn := c.result, c.valid, c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(result, valid)
	}
}

// SetTarget records raw target input and recomputes
func (c *Calculator) SetTarget(input string) {
	c.mu.Lock()
	c.input = input
	c.recomputeLocked()
	result, valid, fn := c.result, c.valid, c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(result, valid)
	}
}

// Result returns the latest projection, if any
func (c *Calculator) Result() (types.ProjectionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.valid
}

// State returns the state the current projection was computed from
func (c *Calculator) State() (types.NetworkState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.ready
}

func (c *Calculator) recomputeLocked() {
	if !c.ready {
		c.result, c.valid = types.ProjectionResult{}, false
		return
	}
	c.result, c.valid = Project(c.state.CurrentBlock, c.state.AvgBlockTime, c.input, c.now())
}
