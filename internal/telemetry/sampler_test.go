package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestFirstCPUSampleIsZero(t *testing.T) {
	s := NewSampler()
	sample := s.Sample(context.Background())
	if sample.CPUPercent != 0 {
		t.Fatalf("first sample has no delta baseline, expected 0, got %f", sample.CPUPercent)
	}
}

func TestCPUSampleGapReturnsPreviousValue(t *testing.T) {
	s := NewSampler()
	s.Sample(context.Background())

	s.mu.Lock()
	s.lastUsage = 42.5
	s.lastSampledAt = time.Now()
	s.mu.Unlock()

	// Immediately re-sampling is inside the minimum gap, so the retained
	// value comes back instead of a near-zero-delta division.
	sample := s.Sample(context.Background())
	if sample.CPUPercent != 42.5 {
		t.Fatalf("expected retained usage 42.5 inside sample gap, got %f", sample.CPUPercent)
	}
}

func TestSampleReportsCores(t *testing.T) {
	s := NewSampler()
	sample := s.Sample(context.Background())
	if sample.Cores < 1 {
		t.Fatalf("expected at least one core, got %d", sample.Cores)
	}
	if sample.SampledAt.IsZero() {
		t.Fatalf("expected SampledAt to be stamped")
	}
}

func TestClampPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{55.5, 55.5},
		{100, 100},
		{140, 100},
	}
	for _, tc := range cases {
		if got := clampPercent(tc.in); got != tc.want {
			t.Fatalf("clampPercent(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestStressCPUBounded(t *testing.T) {
	elapsed, result := StressCPU(100_000)
	if elapsed <= 0 {
		t.Fatalf("expected positive elapsed time, got %v", elapsed)
	}
	if result < 0 {
		t.Fatalf("unexpected negative accumulator: %f", result)
	}
}
