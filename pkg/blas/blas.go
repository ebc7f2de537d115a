package blas

import (
	"log/slog"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/kernelmgr"
	"github.com/Amr-9/goblast/pkg/precision"
	"github.com/Amr-9/goblast/pkg/reduce"
)

// Surface binds one context's kernel manager and profiling override to
// the public Dot/Sum/Gemv entry points. One Surface per open context.
type Surface struct {
	ctx      *crt.Context
	kernels  *kernelmgr.Manager
	override *crt.Override
	log      *slog.Logger
}

// New builds a Surface's kernel table for ctx. override may be nil.
// buildOptions carries internal/config.Config.BuildOptions' manual
// macro overrides through to the kernel manager's build step; nil
// means no override. logger is threaded through to Dot/Sum/Gemv;
// nil defaults to slog.Default().
func New(ctx *crt.Context, override *crt.Override, buildOptions map[string]string, logger *slog.Logger) (*Surface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := kernelmgr.Build(ctx, buildOptions)
	if err != nil {
		return nil, err
	}
	return &Surface{ctx: ctx, kernels: m, override: override, log: logger}, nil
}

// Close releases every kernel and program this surface's manager built.
func (s *Surface) Close() { s.kernels.Close() }

// Precisions reports which of fp16/fp32/fp64 have a built program for
// this surface's device.
func (s *Surface) Precisions() [3]bool {
	return [3]bool{precision.FP16: s.kernels.Built(precision.FP16), precision.FP32: s.kernels.Built(precision.FP32), precision.FP64: s.kernels.Built(precision.FP64)}
}

// Dot computes the dot product of two n-element vectors in precision p.
// The result is float64 for every precision, so callers can compare
// results computed at different precisions without a type switch.
func (s *Surface) Dot(p precision.Tag, v0Buf *crt.Buffer, o0, s0 int64, v1Buf *crt.Buffer, o1, s1 int64, n int64) (float64, error) {
	v0 := reduce.Vector{Buf: v0Buf, Offset: o0, Stride: s0}
	v1 := reduce.Vector{Buf: v1Buf, Offset: o1, Stride: s1}
	if err := validateDot(s.ctx, s.kernels, p, v0, v1, n, s.log); err != nil {
		return 0, err
	}
	return reduce.Dot(s.ctx, s.kernels, s.override, p, v0, v1, n, s.log)
}

// Sum computes sum[p](v, o, s, n).
func (s *Surface) Sum(p precision.Tag, vBuf *crt.Buffer, o, stride int64, n int64) (float64, error) {
	v := reduce.Vector{Buf: vBuf, Offset: o, Stride: stride}
	if err := validateSum(s.ctx, s.kernels, p, v, n, s.log); err != nil {
		return 0, err
	}
	return reduce.Sum(s.ctx, s.kernels, s.override, p, v, n, s.log)
}

// Gemv is the skeletal gemv entry point; see pkg/reduce.Gemv's TODO.
func (s *Surface) Gemv(p precision.Tag, matBuf *crt.Buffer, om, sm int64, vecBuf *crt.Buffer, ov, sv int64, rows, cols int64) ([]float64, error) {
	mat := reduce.Matrix{Buf: matBuf, Offset: om, RowStride: sm}
	vec := reduce.Vector{Buf: vecBuf, Offset: ov, Stride: sv}
	return reduce.Gemv(s.ctx, s.kernels, s.override, p, mat, vec, rows, cols, s.log)
}
