package profile

import "testing"

func TestKernelSeconds(t *testing.T) {
	r := Record{StartNs: 1_000_000, EndNs: 501_000_000}
	want := 0.5
	if got := r.KernelSeconds(); got != want {
		t.Errorf("KernelSeconds() = %v, want %v", got, want)
	}
}

func TestKernelSecondsNonPositiveIsZero(t *testing.T) {
	r := Record{StartNs: 500, EndNs: 500}
	if got := r.KernelSeconds(); got != 0 {
		t.Errorf("KernelSeconds() = %v, want 0 for Start==End", got)
	}
	r = Record{StartNs: 500, EndNs: 100}
	if got := r.KernelSeconds(); got != 0 {
		t.Errorf("KernelSeconds() = %v, want 0 for End<Start", got)
	}
}

func TestGflops(t *testing.T) {
	r := Record{StartNs: 0, EndNs: 1_000_000_000, FloatOps: 2_000_000_000}
	if got := r.Gflops(); got != 2.0 {
		t.Errorf("Gflops() = %v, want 2.0", got)
	}
}

func TestGflopsZeroWhenNoFloatOps(t *testing.T) {
	r := Record{StartNs: 0, EndNs: 1_000_000_000}
	if got := r.Gflops(); got != 0 {
		t.Errorf("Gflops() = %v, want 0 when FloatOps == 0", got)
	}
}

func TestGi32opsAndGi64ops(t *testing.T) {
	r := Record{StartNs: 0, EndNs: 1_000_000_000, Int32Ops: 1_000_000_000, Int64Ops: 3_000_000_000}
	if got := r.Gi32ops(); got != 1.0 {
		t.Errorf("Gi32ops() = %v, want 1.0", got)
	}
	if got := r.Gi64ops(); got != 3.0 {
		t.Errorf("Gi64ops() = %v, want 3.0", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != (Aggregate{}) {
		t.Errorf("Summarize(nil) = %+v, want zero value", got)
	}
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Op: "dot", Precision: "fp32", StartNs: 0, EndNs: 1_000_000_000, FloatOps: 2_000_000_000},
		{Op: "dot", Precision: "fp32", StartNs: 0, EndNs: 500_000_000, FloatOps: 2_000_000_000},
	}
	agg := Summarize(records)
	if agg.Op != "dot" || agg.Precision != "fp32" {
		t.Errorf("unexpected Op/Precision: %+v", agg)
	}
	if agg.Count != 2 {
		t.Errorf("Count = %d, want 2", agg.Count)
	}
	wantSeconds := 1.5
	if agg.TotalSeconds != wantSeconds {
		t.Errorf("TotalSeconds = %v, want %v", agg.TotalSeconds, wantSeconds)
	}
	// Gflops: 2.0 and 4.0 -> mean 3.0
	wantMean := 3.0
	if agg.MeanGflops != wantMean {
		t.Errorf("MeanGflops = %v, want %v", agg.MeanGflops, wantMean)
	}
}
