package testing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/0xmhha/blocketa/pkg/types"
)

// ErrMockFetch is returned by MockSource for scripted failures
var ErrMockFetch = errors.New("mock fetch failure")

// MockSource is a scripted block source. Each LatestBlock call consumes
// the next step; after the script runs out the last step repeats.
type MockSource struct {
	mu sync.Mutex

	steps []sourceStep
	pos   int

	// Historical blocks served by BlockSampleAt
	Blocks  map[uint64]types.BlockSample
	AtError error

	// Call counters
	CallCounts map[string]int
}

type sourceStep struct {
	sample types.BlockSample
	err    error
}

// NewMockSource creates an empty scripted source
func NewMockSource() *MockSource {
	return &MockSource{
		Blocks:     make(map[uint64]types.BlockSample),
		CallCounts: make(map[string]int),
	}
}

// Then appends a sample to the script
func (m *MockSource) Then(s types.BlockSample) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, sourceStep{sample: s})
	return m
}

// ThenFail appends a failure to the script
func (m *MockSource) ThenFail(err error) *MockSource {
	if err == nil {
		err = ErrMockFetch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, sourceStep{err: err})
	return m
}

// WithHistory serves samples from BlockSampleAt
func (m *MockSource) WithHistory(samples ...types.BlockSample) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range samples {
		m.Blocks[s.Number] = s
	}
	return m
}

// LatestBlock returns the next scripted step
func (m *MockSource) LatestBlock(ctx context.Context) (types.BlockSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCounts["LatestBlock"]++

	if err := ctx.Err(); err != nil {
		return types.BlockSample{}, err
	}
	if len(m.steps) == 0 {
		return types.BlockSample{}, ErrMockFetch
	}
	step := m.steps[m.pos]
	if m.pos < len(m.steps)-1 {
		m.pos++
	}
	return step.sample, step.err
}

// BlockSampleAt returns a sample registered with WithHistory
func (m *MockSource) BlockSampleAt(ctx context.Context, number uint64) (types.BlockSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCounts["BlockSampleAt"]++

	if m.AtError != nil {
		return types.BlockSample{}, m.AtError
	}
	s, ok := m.Blocks[number]
	if !ok {
		return types.BlockSample{}, ErrMockFetch
	}
	return s, nil
}

// GetCallCount returns the number of times a method was called
func (m *MockSource) GetCallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCounts[method]
}

// BlockingSource never returns until ctx is done
type BlockingSource struct {
	Started chan struct{}
}

// NewBlockingSource creates a source whose fetches hang until cancelled
func NewBlockingSource() *BlockingSource {
	return &BlockingSource{Started: make(chan struct{}, 16)}
}

// LatestBlock blocks until ctx is cancelled
func (b *BlockingSource) LatestBlock(ctx context.Context) (types.BlockSample, error) {
	select {
	case b.Started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return types.BlockSample{}, ctx.Err()
}

// ManualScheduler fires jobs only when Tick is called, so poll loop tests
// run without wall-clock waits.
type ManualScheduler struct {
	mu        sync.Mutex
	next      uint64
	jobs      map[uint64]func()
	Intervals map[uint64]time.Duration
}

// NewManualScheduler creates a scheduler driven by Tick
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		jobs:      make(map[uint64]func()),
		Intervals: make(map[uint64]time.Duration),
	}
}

// Start registers fn and runs it once immediately
func (s *ManualScheduler) Start(interval time.Duration, fn func()) uint64 {
	s.mu.Lock()
	s.next++
	h := s.next
	s.jobs[h] = fn
	s.Intervals[h] = interval
	s.mu.Unlock()

	fn()
	return h
}

// Cancel removes the job
func (s *ManualScheduler) Cancel(h uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, h)
}

// Tick runs every registered job once
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.jobs))
	for _, fn := range s.jobs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Active returns the number of registered jobs
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// MockGenerator is a scripted advisory text generator
type MockGenerator struct {
	mu sync.Mutex

	Text  string
	Err   error
	Delay time.Duration

	Prompts []string
}

// Generate records the prompt and returns the configured response
func (g *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.Prompts = append(g.Prompts, prompt)
	text, err, delay := g.Text, g.Err, g.Delay
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}

// Calls returns the number of Generate calls
func (g *MockGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}

// FakeClock is a settable clock
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock creates a clock fixed at t
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{t: t}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
