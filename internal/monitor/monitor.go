package monitor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/0xmhha/blocketa/internal/projection"
	"github.com/0xmhha/blocketa/pkg/types"
)

// StateSource provides the latest published network state
type StateSource interface {
	State() (types.NetworkState, bool)
}

// ProjectionSource provides the latest projection
type ProjectionSource interface {
	Result() (types.ProjectionResult, bool)
}

// Config holds configuration for the monitor
type Config struct {
	UpdateInterval time.Duration // How often to update display
}

// DefaultConfig returns default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		UpdateInterval: time.Second,
	}
}

// Monitor renders the tracker state and projection as text
type Monitor struct {
	config      *Config
	state       StateSource
	projections ProjectionSource
	now         func() time.Time

	mu  sync.Mutex
	out io.Writer
}

// New creates a new Monitor instance
func New(state StateSource, projections ProjectionSource, out io.Writer, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		config:      config,
		state:       state,
		projections: projections,
		now:         time.Now,
		out:         out,
	}
}

// WithClock sets the clock used for "updated ago" rendering
func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// StatusLine returns a formatted single-line status
func (m *Monitor) StatusLine() string {
	state, ok := m.state.State()
	if !ok {
		return "Connecting to network..."
	}
	return FormatState(state, m.now())
}

// ProjectionLine returns the projection summary, or a hint when none exists
func (m *Monitor) ProjectionLine() string {
	if m.projections == nil {
		return ""
	}
	result, ok := m.projections.Result()
	if !ok {
		return "Target: enter a block number ahead of the current block"
	}
	return FormatProjection(result)
}

// Printf writes to the monitor output, serialised with the status display
func (m *Monitor) Printf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, format, args...)
}

// Write implements io.Writer so tables can share the monitor output
func (m *Monitor) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.Write(p)
}

// Render writes the current status and projection
func (m *Monitor) Render() {
	status := m.StatusLine()
	proj := m.ProjectionLine()

	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.out, status)
	if proj != "" {
		fmt.Fprintln(m.out, "  "+proj)
	}
}

// Display periodically renders status until ctx is cancelled
func (m *Monitor) Display(ctx context.Context) {
	ticker := time.NewTicker(m.config.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Render()
		}
	}
}

// FormatState renders a network state relative to now
func FormatState(state types.NetworkState, now time.Time) string {
	ago := int(now.Sub(state.LastUpdate).Seconds())
	if ago < 0 {
		ago = 0
	}
	return fmt.Sprintf("Block: %d | Avg Block Time: %.2fs (target ~%.2fs) | Samples: %d | Updated %ds ago",
		state.CurrentBlock, state.AvgBlockTime, types.DefaultBlockTime, len(state.History), ago)
}

// FormatProjection renders a projection result
func FormatProjection(p types.ProjectionResult) string {
	return fmt.Sprintf("Target %d: %d blocks remaining | ETA %s | Arrives %s",
		p.TargetBlock, p.BlocksRemaining,
		projection.FormatDuration(p.EstimatedSeconds),
		p.EstimatedArrival.Local().Format("2006-01-02 15:04:05 MST"))
}
