package profile

import "github.com/Amr-9/goblast/pkg/crt"

// FromSample converts one crt.ProfileSample (the raw per-dispatch
// timestamps pkg/reduce appends into a crt.Override) into a Record,
// deriving FloatOps from the op name and the dispatch's item count:
// dot does one multiply and one add per item (2 flops), sum and the
// tree-reduction's sum_even/sum_odd kernels do one add per item.
func FromSample(s crt.ProfileSample) Record {
	r := Record{
		Op:        s.Op,
		Precision: s.Precision,
		QueuedNs:  s.Queued,
		SubmitNs:  s.Submit,
		StartNs:   s.Start,
		EndNs:     s.End,
		ItemCount: s.ItemsProcessed,
	}
	switch s.Op {
	case "dot":
		r.FloatOps = 2 * s.ItemsProcessed
	default: // sum_even, sum_odd, and any other reduction-stage kernel
		r.FloatOps = s.ItemsProcessed
	}
	return r
}

// Drain feeds every sample in samples into c and returns the count
// observed, the bridge between a crt.Override's raw Samples slice and
// a Collector's EMA/OTel consumption.
func Drain(c *Collector, samples []crt.ProfileSample) int {
	for _, s := range samples {
		c.Observe(FromSample(s))
	}
	return len(samples)
}
