//go:build opencl

package blas

import (
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/precision"
)

// These tests exercise the validation preconditions blas.Surface enforces
// before dispatching into pkg/reduce, and Sum's numeric results on
// compact and strided input. They require a real device (run
// with -tags opencl against a machine with an OpenCL ICD installed), the
// same way cmd/blastbench's scenarios do.

func openTestSurface(t *testing.T) (*crt.Runtime, *crt.Context, *Surface) {
	t.Helper()
	rt, err := crt.Init(slog.Default())
	if err != nil {
		t.Skipf("crt.Init: %v (no OpenCL runtime available)", err)
	}
	if rt.DeviceCount() == 0 {
		t.Skip("no devices discovered")
	}
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s, err := New(ctx, nil, nil, nil)
	if err != nil {
		ctx.Close()
		t.Fatalf("New: %v", err)
	}
	return rt, ctx, s
}

func TestDotRejectsForeignBuffer(t *testing.T) {
	rt, ctx, s := openTestSurface(t)
	defer ctx.Close()
	defer s.Close()

	other, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open second context: %v", err)
	}
	defer other.Close()

	v0, err := ctx.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(v0)
	v1, err := other.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer other.Deallocate(v1)

	_, err = s.Dot(precision.FP32, v0, 0, 1, v1, 0, 1, 1)
	var ce *crt.Error
	if !errors.As(err, &ce) || ce.Code != crt.ErrForeignBuffer {
		t.Fatalf("expected ErrForeignBuffer, got %v", err)
	}
}

func TestDotRejectsInvalidN(t *testing.T) {
	_, ctx, s := openTestSurface(t)
	defer ctx.Close()
	defer s.Close()

	v, err := ctx.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(v)

	_, err = s.Dot(precision.FP32, v, 0, 1, v, 0, 1, 0)
	var ce *crt.Error
	if !errors.As(err, &ce) || ce.Code != crt.ErrInvalidWorkDimension {
		t.Fatalf("expected ErrInvalidWorkDimension, got %v", err)
	}
}

func TestDotRejectsInvalidStride(t *testing.T) {
	_, ctx, s := openTestSurface(t)
	defer ctx.Close()
	defer s.Close()

	v, err := ctx.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(v)

	_, err = s.Dot(precision.FP32, v, 0, 0, v, 0, 1, 1)
	var ce *crt.Error
	if !errors.As(err, &ce) || ce.Code != crt.ErrInvalidWorkDimension {
		t.Fatalf("expected ErrInvalidWorkDimension for stride 0, got %v", err)
	}
}

func writeFloat32s(t *testing.T, ctx *crt.Context, buf *crt.Buffer, vals []float32) {
	t.Helper()
	m, err := ctx.Map(crt.MapWriteInvalidate, buf, 0, int64(len(vals))*4)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	bytes := m.Bytes(len(vals) * 4)
	for i, v := range vals {
		bits := math.Float32bits(v)
		bytes[i*4+0] = byte(bits)
		bytes[i*4+1] = byte(bits >> 8)
		bytes[i*4+2] = byte(bits >> 16)
		bytes[i*4+3] = byte(bits >> 24)
	}
	if err := ctx.Unmap(m); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
}

func TestSumComputesAndPreservesInput(t *testing.T) {
	_, ctx, s := openTestSurface(t)
	defer ctx.Close()
	defer s.Close()

	const n = int64(8)
	v, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(v)

	vals := make([]float32, n)
	for i := range vals {
		vals[i] = float32(i + 1)
	}
	writeFloat32s(t, ctx, v, vals)

	// Two passes over the same buffer: the second fails if the first
	// wrote reduction partials into the input instead of its own
	// scratch.
	const want = 36.0
	for pass := 1; pass <= 2; pass++ {
		got, err := s.Sum(precision.FP32, v, 0, 1, n)
		if err != nil {
			t.Fatalf("Sum pass %d: %v", pass, err)
		}
		if math.Abs(got-want) > 1e-3 {
			t.Fatalf("Sum pass %d = %v, want %v", pass, got, want)
		}
	}
}

func TestSumStrided(t *testing.T) {
	_, ctx, s := openTestSurface(t)
	defer ctx.Close()
	defer s.Close()

	// v[1 + 2k] = k+1 for k in [0,4); everything else is noise the
	// gather must skip.
	vals := make([]float32, 16)
	for i := range vals {
		vals[i] = 1000
	}
	for k := int64(0); k < 4; k++ {
		vals[1+2*k] = float32(k + 1)
	}
	v, err := ctx.Allocate(crt.AccessReadWrite, 16*4)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(v)
	writeFloat32s(t, ctx, v, vals)

	got, err := s.Sum(precision.FP32, v, 1, 2, 4)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	const want = 10.0 // 1+2+3+4
	if math.Abs(got-want) > 1e-3 {
		t.Fatalf("Sum = %v, want %v", got, want)
	}
}

func TestSumRejectsUnsupportedPrecision(t *testing.T) {
	_, ctx, s := openTestSurface(t)
	defer ctx.Close()
	defer s.Close()

	if s.Precisions()[precision.FP16] {
		t.Skip("device supports fp16; this test requires it unsupported")
	}
	v, err := ctx.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(v)

	_, err = s.Sum(precision.FP16, v, 0, 1, 1)
	var ce *crt.Error
	if !errors.As(err, &ce) || ce.Code != crt.ErrPrecisionNotSupported {
		t.Fatalf("expected ErrPrecisionNotSupported, got %v", err)
	}
}
