package profile

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// otelExporter ships Collector observations to an OpenTelemetry meter,
// so kernel dispatch time and throughput reach whatever metrics backend
// the host process has configured in addition to the in-process EMA.
type otelExporter struct {
	kernelSeconds metric.Float64Histogram
	gflops        metric.Float64Histogram
}

// NewOTelExporter builds instruments on meter for kernel dispatch time
// and throughput. Returns an error only if instrument creation fails
// (a meter misconfiguration, not a runtime condition).
func NewOTelExporter(meter metric.Meter) (*otelExporter, error) {
	kernelSeconds, err := meter.Float64Histogram("goblast.kernel.seconds",
		metric.WithDescription("wall-clock time of one kernel dispatch, from profiling timestamps"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	gflops, err := meter.Float64Histogram("goblast.kernel.gflops",
		metric.WithDescription("floating-point throughput of one kernel dispatch"))
	if err != nil {
		return nil, err
	}
	return &otelExporter{kernelSeconds: kernelSeconds, gflops: gflops}, nil
}

func (e *otelExporter) record(r Record) {
	attrs := metric.WithAttributes(
		attribute.String("op", r.Op),
		attribute.String("precision", r.Precision),
	)
	e.kernelSeconds.Record(context.Background(), r.KernelSeconds(), attrs)
	e.gflops.Record(context.Background(), r.Gflops(), attrs)
}
