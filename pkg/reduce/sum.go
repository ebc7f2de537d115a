package reduce

import (
	"log/slog"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/kernelmgr"
	"github.com/Amr-9/goblast/pkg/precision"
)

// Sum computes the fp64 sum of n elements of v, in precision p. Unlike
// Dot, there is no multiply stage: each chunk is gathered into a fresh
// scratch buffer and the tree reduction runs over that copy. The
// reduction must never run over v's own buffer — treeReduce ping-pongs
// writes between its two working buffers, so handing it the caller's
// memory would overwrite the input from the second round on. log is
// threaded the same way as Dot's; nil defaults to slog.Default().
func Sum(ctx *crt.Context, m *kernelmgr.Manager, override *crt.Override, p precision.Tag, v Vector, n int64, log *slog.Logger) (float64, error) {
	if log == nil {
		log = slog.Default()
	}
	l := limitsFor(ctx, override)
	var total float64
	offset := v.Offset
	remaining := n

	for remaining > 0 {
		t := sizeTile(remaining, l)

		src, err := stageSumInput(ctx, m, p, v, offset, t)
		if err != nil {
			return 0, err
		}

		chunkSum, err := treeReduce(ctx, m, override, p, src, t)
		ctx.Deallocate(src)
		if err != nil {
			return 0, err
		}
		total += chunkSum
		log.Debug("reduce: sum chunk", slog.Int64("n", t.total), slog.Int64("remaining", remaining-t.total), slog.String("precision", p.String()))

		remaining -= t.total
		offset += t.total * v.Stride
	}
	return total, nil
}

// stageSumInput gathers t.total elements of v starting at offset into a
// fresh scratch buffer the reduction tree is free to overwrite. Even a
// compact input is copied rather than passed through (the reduction
// writes into both of its ping-pong buffers); the compact case just
// uses the copy kernel without index arithmetic.
func stageSumInput(ctx *crt.Context, m *kernelmgr.Manager, p precision.Tag, v Vector, offset int64, t tile) (*crt.Buffer, error) {
	staged, err := ctx.Allocate(crt.AccessReadWrite, t.total*int64(p.Size()))
	if err != nil {
		return nil, err
	}
	var k *crt.Kernel
	var args []crt.Arg
	if offset == 0 && v.Stride == 1 {
		k = m.Kernel(kernelmgr.OpCopy, p, precision.Compact)
		args = []crt.Arg{crt.ArgBuffer(v.Buf), crt.ArgBuffer(staged)}
	} else {
		oi, si := int32(offset), int32(v.Stride)
		k = m.Kernel(kernelmgr.OpCopy, p, precision.OffsetStride)
		args = []crt.Arg{crt.ArgBuffer(v.Buf), crt.ArgInt32(&oi), crt.ArgInt32(&si), crt.ArgBuffer(staged)}
	}
	if k == nil {
		ctx.Deallocate(staged)
		return nil, &crt.Error{Code: crt.ErrPrecisionNotSupported, Message: p.String()}
	}
	ev, err := ctx.EnqueueRange1D(k, t.groups, t.items, args)
	if err != nil {
		ctx.Deallocate(staged)
		return nil, err
	}
	ctx.ReleaseEvent(ev)
	return staged, nil
}
