package profile

import "sync"

// DefaultEMAWindow is the exponential-moving-average window used when a
// caller doesn't configure one.
const DefaultEMAWindow = 128

// Collector accumulates Records pushed by the reduction engine (via a
// crt.Override's Samples block) into an exponential moving average of
// kernel time and Gflops, plus an optional OpenTelemetry export.
type Collector struct {
	window int
	alpha  float64

	mu         sync.Mutex
	emaSeconds float64
	emaGflops  float64
	count      int

	exporter *otelExporter
}

// NewCollector builds a Collector with the given EMA window (<=0 uses
// DefaultEMAWindow). The smoothing factor alpha = 2/(window+1) is the
// standard EMA derivation from a window size.
func NewCollector(window int) *Collector {
	if window <= 0 {
		window = DefaultEMAWindow
	}
	return &Collector{window: window, alpha: 2.0 / float64(window+1)}
}

// WithOTel attaches an OpenTelemetry meter to c; every Observe call
// after this also records into the meter's instruments. See otel.go.
func (c *Collector) WithOTel(e *otelExporter) *Collector {
	c.exporter = e
	return c
}

// Observe folds one Record into the running EMA.
func (c *Collector) Observe(r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seconds := r.KernelSeconds()
	gflops := r.Gflops()
	if c.count == 0 {
		c.emaSeconds = seconds
		c.emaGflops = gflops
	} else {
		c.emaSeconds += c.alpha * (seconds - c.emaSeconds)
		c.emaGflops += c.alpha * (gflops - c.emaGflops)
	}
	c.count++
	if c.exporter != nil {
		c.exporter.record(r)
	}
}

// EMA returns the current smoothed (seconds, Gflops) pair and the
// number of samples observed so far.
func (c *Collector) EMA() (seconds, gflops float64, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emaSeconds, c.emaGflops, c.count
}
