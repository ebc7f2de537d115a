//go:build opencl

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Amr-9/goblast/pkg/blas"
	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/precision"
)

type scenario struct {
	name string
	run  func(ctx *crt.Context, s *blas.Surface) error
}

// runScenarios runs every scenario against rt.Devices[deviceIndex].
// override and buildOptions come straight from the loaded
// internal/config.Config: override drives rt.Open's tile-size caps and
// profiling-sample collection, buildOptions drives the kernel manager's
// macro table.
func runScenarios(rt *crt.Runtime, deviceIndex int, override *crt.Override, buildOptions map[string]string, log *slog.Logger) (passed, failed int) {
	ctx, err := rt.Open(deviceIndex, override)
	if err != nil {
		fmt.Printf("open device %d: %v\n", deviceIndex, err)
		return 0, 1
	}
	defer ctx.Close()

	surface, err := blas.New(ctx, override, buildOptions, log)
	if err != nil {
		fmt.Printf("build kernel table: %v\n", err)
		return 0, 1
	}
	defer surface.Close()

	scenarios := []scenario{
		{"identity n=8", func(ctx *crt.Context, s *blas.Surface) error { return dotIdentity(ctx, s, 8, 120.0) }},
		{"identity n=16", func(ctx *crt.Context, s *blas.Surface) error { return dotIdentity(ctx, s, 16, 1496.0) }},
		{"strided", dotStrided},
		{"tile-straddling", func(ctx *crt.Context, s *blas.Surface) error {
			return dotChunked(rt, ctx, buildOptions, log)
		}},
		{"fp64 accumulation", dotFP64Accuracy},
		{"sum identity", sumIdentity},
		{"sum tile-straddling", func(ctx *crt.Context, s *blas.Surface) error {
			return sumChunked(rt, ctx, buildOptions, log)
		}},
		{"unsupported precision", dotUnsupportedPrecision},
		{"foreign buffer", func(ctx *crt.Context, s *blas.Surface) error {
			return dotForeignBuffer(rt, ctx, s)
		}},
	}
	for _, sc := range scenarios {
		if err := sc.run(ctx, surface); err != nil {
			fmt.Printf("%-28s FAIL  %v\n", sc.name, err)
			failed++
		} else {
			fmt.Printf("%-28s OK\n", sc.name)
			passed++
		}
	}
	return passed, failed
}

func assertClose(got, want, eps float64) error {
	if math.Abs(got-want) > eps {
		return fmt.Errorf("got %.6f want %.6f (eps %.6g)", got, want, eps)
	}
	return nil
}

func fillVector(ctx *crt.Context, buf *crt.Buffer, n int64, f func(i int64) float32) error {
	m, err := ctx.Map(crt.MapWriteInvalidate, buf, 0, n*4)
	if err != nil {
		return err
	}
	bytes := m.Bytes(int(n * 4))
	for i := int64(0); i < n; i++ {
		v := f(i)
		bits := math.Float32bits(v)
		bytes[i*4+0] = byte(bits)
		bytes[i*4+1] = byte(bits >> 8)
		bytes[i*4+2] = byte(bits >> 16)
		bytes[i*4+3] = byte(bits >> 24)
	}
	return ctx.Unmap(m)
}

func dotIdentity(ctx *crt.Context, s *blas.Surface, n int64, want float64) error {
	v0, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v0)
	v1, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v1)

	if err := fillVector(ctx, v0, n, func(i int64) float32 { return float32(i + 1) }); err != nil {
		return err
	}
	if err := fillVector(ctx, v1, n, func(i int64) float32 { return float32(n - i) }); err != nil {
		return err
	}
	got, err := s.Dot(precision.FP32, v0, 0, 1, v1, 0, 1, n)
	if err != nil {
		return err
	}
	return assertClose(got, want, 1e-3)
}

func dotStrided(ctx *crt.Context, s *blas.Surface) error {
	v0, err := ctx.Allocate(crt.AccessReadWrite, 16*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v0)
	v1, err := ctx.Allocate(crt.AccessReadWrite, 16*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v1)

	if err := fillVector(ctx, v0, 16, func(i int64) float32 {
		if (i-2)%3 == 0 && i >= 2 {
			return float32((i-2)/3 + 1)
		}
		return 0
	}); err != nil {
		return err
	}
	if err := fillVector(ctx, v1, 16, func(i int64) float32 {
		if (i-1)%2 == 0 && i >= 1 {
			return float32(4 - (i-1)/2)
		}
		return 0
	}); err != nil {
		return err
	}
	got, err := s.Dot(precision.FP32, v0, 2, 3, v1, 1, 2, 4)
	if err != nil {
		return err
	}
	return assertClose(got, 20.0, 1e-3)
}

// dotChunked opens its own context with an override that caps
// max_groups=2, max_items=4 (max per chunk = 8), then runs the identity
// pattern at n=10 so the engine must process one chunk of 8 followed by
// a remainder chunk of 2.
func dotChunked(rt *crt.Runtime, baseCtx *crt.Context, buildOptions map[string]string, log *slog.Logger) error {
	override := &crt.Override{MaxGroups: 2, MaxItemsPerGroup: 4}
	ctx, err := rt.Open(baseCtx.DeviceIndex(), override)
	if err != nil {
		return err
	}
	defer ctx.Close()
	s, err := blas.New(ctx, override, buildOptions, log)
	if err != nil {
		return err
	}
	defer s.Close()

	const n = 10
	v0, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v0)
	v1, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v1)

	if err := fillVector(ctx, v0, n, func(i int64) float32 { return float32(i + 1) }); err != nil {
		return err
	}
	if err := fillVector(ctx, v1, n, func(i int64) float32 { return float32(10 - i) }); err != nil {
		return err
	}
	got, err := s.Dot(precision.FP32, v0, 0, 1, v1, 0, 1, n)
	if err != nil {
		return err
	}
	return assertClose(got, 220.0, 1e-3)
}

// sumIdentity sums 1..n over a compact vector, twice: the second pass
// reads the same buffer again, so it fails if the reduction wrote into
// the caller's input instead of its own scratch.
func sumIdentity(ctx *crt.Context, s *blas.Surface) error {
	const n = 8
	v, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v)

	if err := fillVector(ctx, v, n, func(i int64) float32 { return float32(i + 1) }); err != nil {
		return err
	}
	const want = 36.0 // 1+2+...+8
	for pass := 0; pass < 2; pass++ {
		got, err := s.Sum(precision.FP32, v, 0, 1, n)
		if err != nil {
			return err
		}
		if err := assertClose(got, want, 1e-3); err != nil {
			return fmt.Errorf("pass %d: %w", pass+1, err)
		}
	}
	return nil
}

// sumChunked is sumIdentity under the same narrow override dotChunked
// uses (max_groups=2, max_items=4, so 8 elements per chunk): n=10 must
// process a chunk of 8 then a remainder chunk of 2, and the second pass
// again guards against the engine mutating its input.
func sumChunked(rt *crt.Runtime, baseCtx *crt.Context, buildOptions map[string]string, log *slog.Logger) error {
	override := &crt.Override{MaxGroups: 2, MaxItemsPerGroup: 4}
	ctx, err := rt.Open(baseCtx.DeviceIndex(), override)
	if err != nil {
		return err
	}
	defer ctx.Close()
	s, err := blas.New(ctx, override, buildOptions, log)
	if err != nil {
		return err
	}
	defer s.Close()

	const n = 10
	v, err := ctx.Allocate(crt.AccessReadWrite, n*4)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v)

	if err := fillVector(ctx, v, n, func(i int64) float32 { return float32(i + 1) }); err != nil {
		return err
	}
	const want = 55.0 // 1+2+...+10
	for pass := 0; pass < 2; pass++ {
		got, err := s.Sum(precision.FP32, v, 0, 1, n)
		if err != nil {
			return err
		}
		if err := assertClose(got, want, 1e-3); err != nil {
			return fmt.Errorf("pass %d: %w", pass+1, err)
		}
	}
	return nil
}

func dotFP64Accuracy(ctx *crt.Context, s *blas.Surface) error {
	if !s.Precisions()[precision.FP64] {
		fmt.Println("  (device has no fp64; skipping)")
		return nil
	}
	const n = 1024
	const delta = 1.0 / (1 << 20)
	v0, err := ctx.Allocate(crt.AccessReadWrite, n*8)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v0)
	v1, err := ctx.Allocate(crt.AccessReadWrite, n*8)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v1)

	sign := func(i int64) float64 {
		if i%2 == 0 {
			return -1
		}
		return 1
	}
	var want float64
	if err := fillVectorF64(ctx, v0, n, func(i int64) float64 { return 1.0 + sign(i)*float64(i)*delta }); err != nil {
		return err
	}
	if err := fillVectorF64(ctx, v1, n, func(i int64) float64 { return 1.0 - sign(i)*float64(i)*delta }); err != nil {
		return err
	}
	for i := int64(0); i < n; i++ {
		term := float64(i) * delta
		want += 1 - term*term
	}
	got, err := s.Dot(precision.FP64, v0, 0, 1, v1, 0, 1, n)
	if err != nil {
		return err
	}
	dblEpsilon := math.Nextafter(1, 2) - 1
	return assertClose(got, want, float64(n)*dblEpsilon)
}

func fillVectorF64(ctx *crt.Context, buf *crt.Buffer, n int64, f func(i int64) float64) error {
	m, err := ctx.Map(crt.MapWriteInvalidate, buf, 0, n*8)
	if err != nil {
		return err
	}
	bytes := m.Bytes(int(n * 8))
	for i := int64(0); i < n; i++ {
		bits := math.Float64bits(f(i))
		for b := 0; b < 8; b++ {
			bytes[i*8+int64(b)] = byte(bits >> (8 * b))
		}
	}
	return ctx.Unmap(m)
}

// dotUnsupportedPrecision picks a precision the device did not build a
// program for and checks that Dot rejects it cleanly instead of
// crashing. Devices that support all three precisions have nothing to
// exercise here.
func dotUnsupportedPrecision(ctx *crt.Context, s *blas.Surface) error {
	built := s.Precisions()
	var missing precision.Tag = -1
	for _, p := range []precision.Tag{precision.FP64, precision.FP16} {
		if !built[p] {
			missing = p
			break
		}
	}
	if missing < 0 {
		fmt.Println("  (device supports every precision; skipping)")
		return nil
	}
	v, err := ctx.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v)
	_, err = s.Dot(missing, v, 0, 1, v, 0, 1, 1)
	if err == nil {
		return fmt.Errorf("expected precision-not-supported error, got nil")
	}
	var ce *crt.Error
	if !errors.As(err, &ce) || ce.Code != crt.ErrPrecisionNotSupported {
		return fmt.Errorf("expected ErrPrecisionNotSupported, got %v", err)
	}
	return nil
}

func dotForeignBuffer(rt *crt.Runtime, ctx *crt.Context, s *blas.Surface) error {
	other, err := rt.Open(ctx.DeviceIndex(), nil)
	if err != nil {
		return err
	}
	defer other.Close()

	v0, err := ctx.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		return err
	}
	defer ctx.Deallocate(v0)
	v1, err := other.Allocate(crt.AccessReadWrite, 8)
	if err != nil {
		return err
	}
	defer other.Deallocate(v1)

	_, err = s.Dot(precision.FP32, v0, 0, 1, v1, 0, 1, 1)
	if err == nil {
		return fmt.Errorf("expected foreign-buffer error, got nil")
	}
	var ce *crt.Error
	if !errors.As(err, &ce) || ce.Code != crt.ErrForeignBuffer {
		return fmt.Errorf("expected ErrForeignBuffer, got %v", err)
	}
	return nil
}
