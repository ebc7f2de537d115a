package reduce

import (
	"log/slog"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/kernelmgr"
	"github.com/Amr-9/goblast/pkg/precision"
)

// Matrix describes the gemv operand: an m-by-n row-major matrix with a
// base offset and row stride in element units.
type Matrix struct {
	Buf       *crt.Buffer
	Offset    int64
	RowStride int64
}

// Gemv is a driver skeleton: the gemv/gemv_os kernel table entries are
// built by pkg/kernelmgr, but the per-row reduction chaining that would
// turn the kernel's per-element partial products into one result vector
// is not implemented here.
//
// TODO: chain treeReduce over each of the m rows' n partial products
// (the gemv kernel already emits them into a row-major scratch buffer)
// to produce the length-m result vector.
func Gemv(ctx *crt.Context, m *kernelmgr.Manager, override *crt.Override, p precision.Tag, mat Matrix, vec Vector, rows, cols int64, log *slog.Logger) ([]float64, error) {
	if log == nil {
		log = slog.Default()
	}
	_ = ctx
	_ = m
	_ = override
	_ = p
	_ = mat
	_ = vec
	_ = rows
	_ = cols
	log.Warn("reduce: gemv driver loop not implemented", slog.String("precision", p.String()), slog.Int64("rows", rows), slog.Int64("cols", cols))
	return nil, &crt.Error{Code: crt.ErrInvalidKernelDefinition, Message: "gemv driver loop not implemented"}
}
