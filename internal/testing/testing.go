// Package testing provides test utilities and helpers for blocketa tests.
package testing

import (
	"testing"

	"github.com/0xmhha/blocketa/pkg/types"
)

// TestStartTime is the unix timestamp the sample fixtures start at
const TestStartTime = int64(1_700_000_000)

// Sample builds a block sample
func Sample(number uint64, timestamp int64) types.BlockSample {
	return types.BlockSample{Number: number, Timestamp: timestamp}
}

// SampleSeries builds count samples starting at block start, spaced by
// step seconds from TestStartTime
func SampleSeries(start uint64, count int, step int64) []types.BlockSample {
	out := make([]types.BlockSample, count)
	for i := range count {
		out[i] = Sample(start+uint64(i), TestStartTime+int64(i)*step)
	}
	return out
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

// AssertEqual fails the test if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("assertion failed: %s", msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("assertion failed (expected false): %s", msg)
	}
}

// AssertLen fails the test if the slice length doesn't match
func AssertLen[T any](t *testing.T, slice []T, expectedLen int) {
	t.Helper()
	if len(slice) != expectedLen {
		t.Errorf("expected length %d, got %d", expectedLen, len(slice))
	}
}

// AssertSamples fails the test if the block numbers in got differ from want
func AssertSamples(t *testing.T, got []types.BlockSample, want ...uint64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d (%v)", len(want), len(got), got)
	}
	for i, n := range want {
		if got[i].Number != n {
			t.Errorf("sample %d: got block %d, want %d", i, got[i].Number, n)
		}
	}
}
