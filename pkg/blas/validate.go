// Package blas is the public BLAS-1/2 surface: per-precision dot and
// sum entry points, argument validation, and the gemv skeleton,
// dispatching into pkg/reduce.
package blas

import (
	"log/slog"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/kernelmgr"
	"github.com/Amr-9/goblast/pkg/precision"
	"github.com/Amr-9/goblast/pkg/reduce"
)

// validateDot checks the shared-context, precision-support, and
// offset/stride/n preconditions before anything is enqueued. The
// surface reports violations as errors rather than panicking (unlike
// crt's NDRange bounds check) because here the caller can recover by
// choosing a different precision or fixing its own bookkeeping. Every
// rejection is also logged at Warn level so a misbehaving caller shows
// up in the log stream, not just in the returned error.
func validateDot(ctx *crt.Context, m *kernelmgr.Manager, p precision.Tag, v0, v1 reduce.Vector, n int64, log *slog.Logger) error {
	if v0.Buf.Context() != ctx || v1.Buf.Context() != ctx {
		log.Warn("blas: dot rejected foreign buffer")
		return &crt.Error{Code: crt.ErrForeignBuffer, Message: "dot: operands from different contexts"}
	}
	if !p.Valid() {
		log.Warn("blas: dot rejected invalid precision", slog.String("precision", p.String()))
		return &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: p.String()}
	}
	if !m.Built(p) {
		log.Warn("blas: dot rejected unbuilt precision", slog.String("precision", p.String()))
		return &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: "precision " + p.String() + " not built for this device"}
	}
	if n < 1 {
		log.Warn("blas: dot rejected n", slog.Int64("n", n))
		return &crt.Error{Code: crt.ErrInvalidWorkDimension, Message: "n must be >= 1"}
	}
	if v0.Offset < 0 || v1.Offset < 0 {
		log.Warn("blas: dot rejected negative offset")
		return &crt.Error{Code: crt.ErrInvalidWorkDimension, Message: "offsets must be >= 0"}
	}
	if v0.Stride < 1 || v1.Stride < 1 {
		log.Warn("blas: dot rejected invalid stride")
		return &crt.Error{Code: crt.ErrInvalidWorkDimension, Message: "strides must be >= 1"}
	}
	return nil
}

func validateSum(ctx *crt.Context, m *kernelmgr.Manager, p precision.Tag, v reduce.Vector, n int64, log *slog.Logger) error {
	if v.Buf.Context() != ctx {
		log.Warn("blas: sum rejected foreign buffer")
		return &crt.Error{Code: crt.ErrForeignBuffer, Message: "sum: operand from a different context"}
	}
	if !p.Valid() {
		log.Warn("blas: sum rejected invalid precision", slog.String("precision", p.String()))
		return &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: p.String()}
	}
	if !m.Built(p) {
		log.Warn("blas: sum rejected unbuilt precision", slog.String("precision", p.String()))
		return &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: "precision " + p.String() + " not built for this device"}
	}
	if n < 1 {
		log.Warn("blas: sum rejected n", slog.Int64("n", n))
		return &crt.Error{Code: crt.ErrInvalidWorkDimension, Message: "n must be >= 1"}
	}
	if v.Offset < 0 {
		log.Warn("blas: sum rejected negative offset")
		return &crt.Error{Code: crt.ErrInvalidWorkDimension, Message: "offset must be >= 0"}
	}
	if v.Stride < 1 {
		log.Warn("blas: sum rejected invalid stride")
		return &crt.Error{Code: crt.ErrInvalidWorkDimension, Message: "stride must be >= 1"}
	}
	return nil
}
