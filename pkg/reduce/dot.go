package reduce

import (
	"log/slog"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/fp16"
	"github.com/Amr-9/goblast/pkg/kernelmgr"
	"github.com/Amr-9/goblast/pkg/precision"
)

// Vector describes one operand to Dot/Sum: a buffer plus an offset and
// stride in element units.
type Vector struct {
	Buf    *crt.Buffer
	Offset int64
	Stride int64
}

// Dot computes the fp64 dot product of two vectors of n elements each,
// in precision p, chunked to respect ctx's device limits (or override's
// narrower caps): tile, multiply, tree-reduce, accumulate in fp64,
// advance. Keeping the host accumulator in fp64 bounds round-off growth
// across chunks. log receives one Debug record per chunk processed; nil
// defaults to slog.Default().
func Dot(ctx *crt.Context, m *kernelmgr.Manager, override *crt.Override, p precision.Tag, v0, v1 Vector, n int64, log *slog.Logger) (float64, error) {
	if log == nil {
		log = slog.Default()
	}
	l := limitsFor(ctx, override)
	var total float64
	o0, o1 := v0.Offset, v1.Offset
	remaining := n

	for remaining > 0 {
		t := sizeTile(remaining, l)

		r, err := ctx.Allocate(crt.AccessReadWrite, t.total*int64(p.Size()))
		if err != nil {
			return 0, err
		}

		addr := precision.Select(o0, v0.Stride, o1, v1.Stride)
		k := m.Kernel(kernelmgr.OpDot, p, addr)
		if k == nil {
			ctx.Deallocate(r)
			return 0, &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: p.String()}
		}

		args := dotArgs(addr, v0.Buf, o0, v0.Stride, v1.Buf, o1, v1.Stride, r)
		ev, err := ctx.EnqueueRange1D(k, t.groups, t.items, args)
		if err != nil {
			ctx.Deallocate(r)
			return 0, err
		}
		recordSample(ctx, override, "dot", p, ev, t.total)
		ctx.ReleaseEvent(ev)

		chunkSum, err := treeReduce(ctx, m, override, p, r, t)
		ctx.Deallocate(r)
		if err != nil {
			return 0, err
		}
		total += chunkSum
		log.Debug("reduce: dot chunk", slog.Int64("n", t.total), slog.Int64("remaining", remaining-t.total), slog.String("precision", p.String()))

		remaining -= t.total
		o0 += t.total * v0.Stride
		o1 += t.total * v1.Stride
	}
	return total, nil
}

func dotArgs(addr precision.Addressing, v0 *crt.Buffer, o0, s0 int64, v1 *crt.Buffer, o1, s1 int64, r *crt.Buffer) []crt.Arg {
	if addr == precision.Compact {
		return []crt.Arg{crt.ArgBuffer(v0), crt.ArgBuffer(v1), crt.ArgBuffer(r)}
	}
	o0i, s0i, o1i, s1i := int32(o0), int32(s0), int32(o1), int32(s1)
	return []crt.Arg{
		crt.ArgBuffer(v0), crt.ArgInt32(&o0i), crt.ArgInt32(&s0i),
		crt.ArgBuffer(v1), crt.ArgInt32(&o1i), crt.ArgInt32(&s1i),
		crt.ArgBuffer(r),
	}
}

// treeReduce runs the logarithmic-depth tree reduction over r (which
// holds t.total partial products/sums) and returns the chunk's scalar
// result converted to fp64.
func treeReduce(ctx *crt.Context, m *kernelmgr.Manager, override *crt.Override, p precision.Tag, r *crt.Buffer, t tile) (float64, error) {
	// The first reduction round writes ceil(total/2) elements into the
	// scratch buffer, the most it ever holds; for total == 1 that is
	// still one element, so the allocation is never zero bytes.
	half := (t.total + 1) / 2 * int64(p.Size())
	scratch, err := ctx.Allocate(crt.AccessReadWrite, half)
	if err != nil {
		return 0, err
	}
	defer ctx.Deallocate(scratch)

	a, b := r, scratch
	groups, items := t.groups, t.items
	mElems := t.total
	k := mElems / 2

	for k >= 1 {
		var op kernelmgr.Op
		if mElems%2 == 0 {
			op = kernelmgr.OpSumEven
		} else {
			op = kernelmgr.OpSumOdd
		}
		if groups > 1 {
			groups /= 2
		} else {
			items /= 2
		}
		kern := m.Kernel(op, p, precision.Compact)
		if kern == nil {
			return 0, &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: p.String()}
		}
		ev, err := ctx.EnqueueRange1D(kern, groups, items, []crt.Arg{crt.ArgBuffer(a), crt.ArgBuffer(b)})
		if err != nil {
			return 0, err
		}
		recordSample(ctx, override, string(op), p, ev, groups*items)
		ctx.ReleaseEvent(ev)

		a, b = b, a
		mElems = k
		k /= 2
	}

	if err := ctx.Finish(); err != nil {
		return 0, err
	}
	mapped, err := ctx.Map(crt.MapRead, a, 0, int64(p.Size()))
	if err != nil {
		return 0, err
	}
	result := readScalar(p, mapped.Bytes(p.Size()))
	if err := ctx.Unmap(mapped); err != nil {
		return 0, err
	}
	return result, nil
}

func readScalar(p precision.Tag, b []byte) float64 {
	switch p {
	case precision.FP16:
		bits := uint16(b[0]) | uint16(b[1])<<8
		return float64(fp16.ToFloat32(bits))
	case precision.FP32:
		bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		return float64(fp16.Float32FromBits(bits))
	default: // FP64
		var bits uint64
		for i := 7; i >= 0; i-- {
			bits = bits<<8 | uint64(b[i])
		}
		return fp16.Float64FromBits(bits)
	}
}

func recordSample(ctx *crt.Context, override *crt.Override, op string, p precision.Tag, ev *crt.Event, items int64) {
	if override == nil || override.Samples == nil {
		return
	}
	if err := ev.Profile(); err != nil {
		return
	}
	override.AppendSample(crt.ProfileSample{
		Op: op, Precision: p.String(),
		Queued: ev.Queued, Submit: ev.Submit, Start: ev.Start, End: ev.End,
		ItemsProcessed: items,
	})
}
