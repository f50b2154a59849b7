package history

import (
	"math/rand"
	"testing"

	"github.com/0xmhha/blocketa/pkg/types"
)

func sample(n uint64, ts int64) types.BlockSample {
	return types.BlockSample{Number: n, Timestamp: ts}
}

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"explicit", 5, 5},
		{"zero falls back to default", 0, types.DefaultWindowSize},
		{"negative falls back to default", -3, types.DefaultWindowSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.capacity)
			if w.Cap() != tt.want {
				t.Errorf("Cap() = %d, want %d", w.Cap(), tt.want)
			}
			if w.Len() != 0 {
				t.Errorf("Len() = %d, want 0", w.Len())
			}
		})
	}
}

func TestWindow_AppendAdvances(t *testing.T) {
	w := NewWindow(12)

	if !w.Append(sample(100, 1000)) {
		t.Fatal("first sample should be accepted into an empty window")
	}
	if !w.Append(sample(101, 1003)) {
		t.Fatal("higher block number should be accepted")
	}

	tail, ok := w.Tail()
	if !ok {
		t.Fatal("Tail() reported empty window")
	}
	if tail.Number != 101 {
		t.Errorf("tail number = %d, want 101", tail.Number)
	}
}

func TestWindow_AppendRejectsStaleAndRegressed(t *testing.T) {
	w := NewWindow(12)
	w.Append(sample(100, 1000))
	w.Append(sample(105, 1015))

	before := w.Samples()

	tests := []struct {
		name string
		s    types.BlockSample
	}{
		{"same number", sample(105, 1020)},
		{"lower number", sample(103, 1009)},
		{"zero", sample(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w.Append(tt.s) {
				t.Errorf("Append(%+v) = true, want false", tt.s)
			}
			after := w.Samples()
			if len(after) != len(before) {
				t.Fatalf("len changed: %d -> %d", len(before), len(after))
			}
			for i := range before {
				if after[i] != before[i] {
					t.Errorf("entry %d changed: %+v -> %+v", i, before[i], after[i])
				}
			}
		})
	}
}

func TestWindow_EvictsOldestFirst(t *testing.T) {
	w := NewWindow(3)
	for i := uint64(1); i <= 5; i++ {
		w.Append(sample(i, int64(i*3)))
	}

	got := w.Samples()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []uint64{3, 4, 5}
	for i, n := range want {
		if got[i].Number != n {
			t.Errorf("entry %d number = %d, want %d", i, got[i].Number, n)
		}
	}
}

func TestWindow_SamplesIsCopy(t *testing.T) {
	w := NewWindow(3)
	w.Append(sample(1, 10))

	s := w.Samples()
	s[0].Number = 999

	tail, _ := w.Tail()
	if tail.Number != 1 {
		t.Errorf("mutating Samples() result changed the window: tail = %d", tail.Number)
	}
}

func TestWindow_RandomInputKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w := NewWindow(types.DefaultWindowSize)

	for i := 0; i < 2000; i++ {
		n := uint64(rng.Intn(500))
		w.Append(sample(n, int64(rng.Intn(10000))))

		got := w.Samples()
		if len(got) > w.Cap() {
			t.Fatalf("iteration %d: len %d exceeds capacity %d", i, len(got), w.Cap())
		}
		for j := 1; j < len(got); j++ {
			if got[j].Number <= got[j-1].Number {
				t.Fatalf("iteration %d: numbers not strictly increasing at %d: %d then %d",
					i, j, got[j-1].Number, got[j].Number)
			}
		}
	}
}

func TestWindow_TailEmpty(t *testing.T) {
	w := NewWindow(2)
	if _, ok := w.Tail(); ok {
		t.Error("Tail() on empty window should report false")
	}
}
