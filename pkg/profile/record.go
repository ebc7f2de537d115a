// Package profile is the profiling collector (C6): per-dispatch
// records, derived Gflops/Gi32ops/Gi64ops, an exponential-moving-average
// block over recent dispatches, and an optional OpenTelemetry export.
package profile

// Record is one per-dispatch profile record: raw nanosecond timestamps,
// kernel time, operation counts, and derived throughput.
type Record struct {
	Op        string
	Precision string

	QueuedNs, SubmitNs, StartNs, EndNs uint64
	HostUserSeconds                   float64 // optional, filled by caller

	FloatOps  int64
	Int32Ops  int64
	Int64Ops  int64
	ItemCount int64
}

// KernelSeconds returns End-Start converted to seconds.
func (r Record) KernelSeconds() float64 {
	if r.EndNs <= r.StartNs {
		return 0
	}
	return float64(r.EndNs-r.StartNs) / 1e9
}

// Gflops returns FloatOps / KernelSeconds() / 1e9, or 0 if the kernel
// time is 0.
func (r Record) Gflops() float64 {
	s := r.KernelSeconds()
	if s <= 0 || r.FloatOps == 0 {
		return 0
	}
	return float64(r.FloatOps) / s / 1e9
}

// Gi32ops returns Int32Ops / KernelSeconds() / 1e9.
func (r Record) Gi32ops() float64 {
	s := r.KernelSeconds()
	if s <= 0 || r.Int32Ops == 0 {
		return 0
	}
	return float64(r.Int32Ops) / s / 1e9
}

// Gi64ops returns Int64Ops / KernelSeconds() / 1e9.
func (r Record) Gi64ops() float64 {
	s := r.KernelSeconds()
	if s <= 0 || r.Int64Ops == 0 {
		return 0
	}
	return float64(r.Int64Ops) / s / 1e9
}

// Aggregate is the folded view of a slice of per-kernel Records from
// one user-level operation: summed kernel time and the arithmetic mean
// of Gflops across records.
type Aggregate struct {
	Op, Precision string
	TotalSeconds  float64
	MeanGflops    float64
	Count         int
}

// Summarize folds records from one user-level operation (e.g. one Dot
// call) into an Aggregate: summed kernel time, arithmetic mean of
// Gflops. The mean is deliberately unweighted; a short reduction stage
// counts the same as the long multiply stage.
func Summarize(records []Record) Aggregate {
	if len(records) == 0 {
		return Aggregate{}
	}
	var sumSeconds, sumGflops float64
	for _, r := range records {
		sumSeconds += r.KernelSeconds()
		sumGflops += r.Gflops()
	}
	return Aggregate{
		Op:           records[0].Op,
		Precision:    records[0].Precision,
		TotalSeconds: sumSeconds,
		MeanGflops:   sumGflops / float64(len(records)),
		Count:        len(records),
	}
}
