// Package console reads interactive commands from the terminal and routes
// them to the projection calculator, advisory service and history views.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xmhha/blocketa/internal/advisory"
	"github.com/0xmhha/blocketa/internal/analyzer"
	"github.com/0xmhha/blocketa/internal/monitor"
	"github.com/0xmhha/blocketa/pkg/types"
)

// Calculator accepts target input and exposes the resulting projection
type Calculator interface {
	SetTarget(input string)
	Result() (types.ProjectionResult, bool)
	State() (types.NetworkState, bool)
}

// Advisor produces advisories asynchronously
type Advisor interface {
	Request(ctx context.Context, sum types.Summary, done func(string))
	InFlight() bool
	Latest() string
}

// ErrQuit is returned by Run when the user asks to exit
var ErrQuit = errors.New("quit requested")

// Console dispatches one command per input line
type Console struct {
	calc    Calculator
	advisor Advisor
	monitor *monitor.Monitor
}

// New creates a console. A nil advisor answers every request with
// advisory.Fallback.
func New(calc Calculator, advisor Advisor, m *monitor.Monitor) *Console {
	return &Console{calc: calc, advisor: advisor, monitor: m}
}

// Run reads commands from in until EOF, "quit" or ctx cancellation.
// It returns ErrQuit only for an explicit quit.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	c.printHelp()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case line := <-lines:
			if !c.Handle(ctx, line) {
				return ErrQuit
			}
		}
	}
}

// Handle executes a single command line. It returns false on quit.
func (c *Console) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return false
	case "help":
		c.printHelp()
	case "status":
		c.monitor.Render()
		if summary := c.Summary(); summary != "" {
			c.monitor.Printf("  %s\n", summary)
		}
	case "history":
		c.printHistory()
	case "export":
		if len(fields) < 2 {
			c.monitor.Printf("usage: export <file.csv>\n")
			return true
		}
		c.export(fields[1])
	case "ai", "analyze":
		c.requestAdvisory(ctx)
	default:
		c.calc.SetTarget(line)
		c.monitor.Printf("%s\n", c.monitor.ProjectionLine())
	}
	return true
}

func (c *Console) printHelp() {
	c.monitor.Printf("Commands: <block number> | ai | history | export <file> | status | quit\n")
}

func (c *Console) printHistory() {
	state, ok := c.calc.State()
	if !ok {
		c.monitor.Printf("No blocks observed yet\n")
		return
	}
	analyzer.PrintTable(c.monitor, analyzer.Analyze(state.History))
}

func (c *Console) export(path string) {
	state, ok := c.calc.State()
	if !ok {
		c.monitor.Printf("No blocks observed yet\n")
		return
	}

	file, err := os.Create(path)
	if err != nil {
		c.monitor.Printf("Export failed: %v\n", err)
		return
	}
	defer file.Close()

	if err := analyzer.ExportCSV(file, analyzer.Analyze(state.History)); err != nil {
		c.monitor.Printf("Export failed: %v\n", err)
		return
	}
	c.monitor.Printf("Exported %d blocks to %s\n", len(state.History), path)
}

func (c *Console) requestAdvisory(ctx context.Context) {
	result, ok := c.calc.Result()
	if !ok {
		c.monitor.Printf("Input a target block to get AI prediction insights.\n")
		return
	}
	if c.advisor == nil {
		c.monitor.Printf("AI: %q\n", advisory.Fallback)
		return
	}
	if c.advisor.InFlight() {
		c.monitor.Printf("AI analysis already running...\n")
		return
	}
	state, _ := c.calc.State()

	c.monitor.Printf("Analyzing context...\n")
	c.advisor.Request(ctx, types.SummaryOf(state, result), func(text string) {
		c.monitor.Printf("AI: %q\n", text)
	})
}

// Summary renders the last advisory for display
func (c *Console) Summary() string {
	if c.advisor == nil {
		return ""
	}
	return fmt.Sprintf("AI: %q", c.advisor.Latest())
}
