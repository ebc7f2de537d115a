package kernelmgr

import (
	"embed"
	"fmt"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/precision"
)

//go:embed kernels/blast.cl
var source embed.FS

// Op names one operation in the kernel bundle.
type Op string

const (
	OpDot     Op = "dot"
	OpSumOdd  Op = "sum_odd"
	OpSumEven Op = "sum_even"
	OpGemv    Op = "gemv"
	OpCopy    Op = "copy"
)

var ops = []Op{OpDot, OpSumOdd, OpSumEven, OpGemv, OpCopy}

type tableKey struct {
	op   Op
	p    precision.Tag
	addr precision.Addressing
}

// Manager owns the compiled programs and kernel table for one context.
// Built exactly once at construction; teardown releases exactly the
// kernels and programs it built, bounded by the fp16/fp64 eligibility
// recorded at build time.
type Manager struct {
	ctx      *crt.Context
	programs [3]*crt.Program // indexed by precision.Tag; nil if not built
	kernels  map[tableKey]*crt.Kernel
}

// Build compiles the kernel bundle against ctx's device for every
// eligible precision and creates every named kernel entry point.
// fp32 is always built; fp16 iff the device has fp16 capability; fp64
// iff the device's fp64 config is non-zero. extra is forwarded to
// buildOptions as a manual macro-override table (internal/config.Config.
// BuildOptions); pass nil when no override is needed.
func Build(ctx *crt.Context, extra map[string]string) (*Manager, error) {
	src, err := source.ReadFile("kernels/blast.cl")
	if err != nil {
		return nil, fmt.Errorf("kernelmgr: read embedded source: %w", err)
	}
	d := ctx.Device()
	m := &Manager{ctx: ctx, kernels: make(map[tableKey]*crt.Kernel)}

	eligible := [3]bool{
		precision.FP16: d.HasFP16(),
		precision.FP32: true,
		precision.FP64: d.HasFP64(),
	}
	for _, p := range []precision.Tag{precision.FP16, precision.FP32, precision.FP64} {
		if !eligible[p] {
			continue
		}
		opts := buildOptions(d, p, extra)
		prog, err := ctx.Compile(src, opts)
		if err != nil {
			if p == precision.FP32 {
				return nil, fmt.Errorf("kernelmgr: build fp32 program: %w", err)
			}
			// fp16/fp64 build failures downgrade to "not built" rather
			// than aborting: a device can advertise an extension string
			// it doesn't fully honor at compile time.
			continue
		}
		m.programs[p] = prog
		if err := m.createKernels(prog, p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) createKernels(prog *crt.Program, p precision.Tag) error {
	for _, op := range ops {
		for _, addr := range []precision.Addressing{precision.Compact, precision.OffsetStride} {
			name := precision.KernelName(string(op), p, addr)
			k, err := prog.CreateKernel(name)
			if err != nil {
				return fmt.Errorf("kernelmgr: create kernel %s: %w", name, err)
			}
			m.kernels[tableKey{op: op, p: p, addr: addr}] = k
		}
	}
	return nil
}

// Kernel returns the compiled kernel for (op, p, addr), or nil if p was
// not built for this device (e.g. fp64 on a device with no fp64
// capability).
func (m *Manager) Kernel(op Op, p precision.Tag, addr precision.Addressing) *crt.Kernel {
	return m.kernels[tableKey{op: op, p: p, addr: addr}]
}

// Built reports whether a program was successfully compiled for p.
func (m *Manager) Built(p precision.Tag) bool { return m.programs[p] != nil }

// Close releases every kernel and program this manager built.
func (m *Manager) Close() {
	for _, k := range m.kernels {
		m.ctx.ReleaseKernel(k)
	}
	for _, prog := range m.programs {
		if prog != nil {
			m.ctx.ReleaseProgram(prog)
		}
	}
}
