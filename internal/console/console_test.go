package console

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/0xmhha/blocketa/internal/advisory"
	"github.com/0xmhha/blocketa/internal/monitor"
	"github.com/0xmhha/blocketa/internal/projection"
	testutil "github.com/0xmhha/blocketa/internal/testing"
	"github.com/0xmhha/blocketa/pkg/types"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestConsole(t *testing.T, gen advisory.Generator) (*Console, *projection.Calculator, *advisory.Service, *syncBuffer) {
	t.Helper()
	calc := projection.NewCalculator(nil)
	calc.UpdateState(types.NetworkState{
		CurrentBlock: 100,
		AvgBlockTime: 3.0,
		History:      testutil.SampleSeries(98, 3, 3),
		LastUpdate:   time.Now(),
	})

	out := &syncBuffer{}
	svc := advisory.New(gen, &advisory.Config{Timeout: time.Second})
	m := monitor.New(calc, calc, out, nil)
	return New(calc, svc, m), calc, svc, out
}

func TestConsole_TargetInput(t *testing.T) {
	c, calc, _, out := newTestConsole(t, nil)

	testutil.AssertTrue(t, c.Handle(context.Background(), "105"), "target input should not quit")

	result, ok := calc.Result()
	testutil.AssertTrue(t, ok, "projection expected")
	testutil.AssertEqual(t, result.BlocksRemaining, uint64(5))
	if !strings.Contains(out.String(), "ETA 15s") {
		t.Errorf("output missing ETA:\n%s", out.String())
	}

	c.Handle(context.Background(), "abc")
	_, ok = calc.Result()
	testutil.AssertFalse(t, ok, "invalid input should clear the projection")
}

func TestConsole_Quit(t *testing.T) {
	c, _, _, _ := newTestConsole(t, nil)
	testutil.AssertFalse(t, c.Handle(context.Background(), "quit"), "quit should stop the console")
	testutil.AssertTrue(t, c.Handle(context.Background(), "   "), "blank line should be ignored")
}

func TestConsole_History(t *testing.T) {
	c, _, _, out := newTestConsole(t, nil)
	c.Handle(context.Background(), "history")

	if !strings.Contains(out.String(), "Block Range: 98 - 100") {
		t.Errorf("history output unexpected:\n%s", out.String())
	}
}

func TestConsole_Export(t *testing.T) {
	c, _, _, _ := newTestConsole(t, nil)
	path := filepath.Join(t.TempDir(), "window.csv")

	c.Handle(context.Background(), "export "+path)

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, strings.Count(string(data), "\n"), 4)
}

func TestConsole_AdvisoryRequiresProjection(t *testing.T) {
	gen := &testutil.MockGenerator{Text: "steady"}
	c, _, _, out := newTestConsole(t, gen)

	c.Handle(context.Background(), "ai")
	testutil.AssertEqual(t, gen.Calls(), 0)
	if !strings.Contains(out.String(), "Input a target block") {
		t.Errorf("expected hint, got:\n%s", out.String())
	}
}

func TestConsole_AdvisoryFallback(t *testing.T) {
	gen := &testutil.MockGenerator{Err: testutil.ErrMockFetch}
	c, calc, svc, out := newTestConsole(t, gen)

	before, _ := calc.State()
	c.Handle(context.Background(), "105")
	c.Handle(context.Background(), "ai")
	svc.Wait()

	if !strings.Contains(out.String(), advisory.Fallback) {
		t.Errorf("expected fallback text, got:\n%s", out.String())
	}
	after, _ := calc.State()
	testutil.AssertEqual(t, after.CurrentBlock, before.CurrentBlock)
	testutil.AssertEqual(t, after.AvgBlockTime, before.AvgBlockTime)
	testutil.AssertEqual(t, c.Summary(), `AI: "`+advisory.Fallback+`"`)
}

func TestConsole_RunStopsAtEOF(t *testing.T) {
	c, calc, _, _ := newTestConsole(t, nil)

	err := c.Run(context.Background(), strings.NewReader("110\nstatus\n"))
	testutil.AssertNoError(t, err)

	result, ok := calc.Result()
	testutil.AssertTrue(t, ok, "projection expected")
	testutil.AssertEqual(t, result.TargetBlock, uint64(110))
}

func TestConsole_RunQuit(t *testing.T) {
	c, _, _, _ := newTestConsole(t, nil)

	err := c.Run(context.Background(), strings.NewReader("quit\n105\n"))
	if !errors.Is(err, ErrQuit) {
		t.Errorf("Run() error = %v, want ErrQuit", err)
	}
}

func TestConsole_AdvisoryWithoutGenerator(t *testing.T) {
	c, _, svc, out := newTestConsole(t, nil)

	c.Handle(context.Background(), "105")
	c.Handle(context.Background(), "ai")
	svc.Wait()

	if !strings.Contains(out.String(), `AI: "`+advisory.Fallback+`"`) {
		t.Errorf("expected fallback text, got:\n%s", out.String())
	}
}

func TestConsole_AdvisoryNilAdvisor(t *testing.T) {
	calc := projection.NewCalculator(nil)
	calc.UpdateState(types.NetworkState{CurrentBlock: 100, AvgBlockTime: 3.0, LastUpdate: time.Now()})
	out := &syncBuffer{}
	c := New(calc, nil, monitor.New(calc, calc, out, nil))

	c.Handle(context.Background(), "105")
	c.Handle(context.Background(), "ai")

	if !strings.Contains(out.String(), advisory.Fallback) {
		t.Errorf("expected fallback text, got:\n%s", out.String())
	}
}

func TestConsole_StatusShowsAdvisory(t *testing.T) {
	c, _, _, out := newTestConsole(t, nil)

	c.Handle(context.Background(), "status")

	if !strings.Contains(out.String(), `AI: "`+advisory.Initial+`"`) {
		t.Errorf("status missing advisory line:\n%s", out.String())
	}
}
