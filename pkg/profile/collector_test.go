package profile

import "testing"

func TestNewCollectorDefaultsWindow(t *testing.T) {
	c := NewCollector(0)
	wantAlpha := 2.0 / float64(DefaultEMAWindow+1)
	if c.alpha != wantAlpha {
		t.Errorf("alpha = %v, want %v", c.alpha, wantAlpha)
	}
}

func TestNewCollectorCustomWindow(t *testing.T) {
	c := NewCollector(3)
	wantAlpha := 0.5 // 2/(3+1)
	if c.alpha != wantAlpha {
		t.Errorf("alpha = %v, want %v", c.alpha, wantAlpha)
	}
}

func TestObserveFirstSampleSeedsEMA(t *testing.T) {
	c := NewCollector(4)
	r := Record{StartNs: 0, EndNs: 1_000_000_000, FloatOps: 1_000_000_000}
	c.Observe(r)
	seconds, gflops, count := c.EMA()
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if seconds != r.KernelSeconds() {
		t.Errorf("seconds = %v, want %v", seconds, r.KernelSeconds())
	}
	if gflops != r.Gflops() {
		t.Errorf("gflops = %v, want %v", gflops, r.Gflops())
	}
}

func TestObserveSmoothsTowardNewSample(t *testing.T) {
	c := NewCollector(1) // alpha = 1.0, EMA jumps straight to new value
	c.Observe(Record{StartNs: 0, EndNs: 1_000_000_000, FloatOps: 1_000_000_000})
	c.Observe(Record{StartNs: 0, EndNs: 2_000_000_000, FloatOps: 4_000_000_000})
	seconds, gflops, count := c.EMA()
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if seconds != 2.0 {
		t.Errorf("seconds = %v, want 2.0 (alpha=1 tracks latest sample)", seconds)
	}
	if gflops != 2.0 {
		t.Errorf("gflops = %v, want 2.0", gflops)
	}
}
