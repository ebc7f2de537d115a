package crt

import (
	"fmt"
	"log/slog"
	"sync"
)

// Override caps the reduction engine's tile sizing and optionally
// collects profiling samples. Zero values for MaxGroups/MaxItemsPerGroup
// mean "use the device maximum". Override is caller-owned and
// passed to Open; SampleCap bounds the Samples slice so a long-running
// process can't grow it unboundedly.
type Override struct {
	MaxGroups        int64
	MaxItemsPerGroup int64

	// Samples, if non-nil, enables profiling: the reduction engine
	// appends one record per dot multiply and tree-reduction dispatch
	// (capped at SampleCap; Sum's staging copy dispatch is not recorded)
	// and the profiling-enabled queue records timestamps for every
	// dispatch.
	Samples    []ProfileSample
	SampleCap  int
	sampleLock sync.Mutex
}

// ProfileSample is the minimal per-dispatch record the reduction engine
// appends directly into an Override block; pkg/profile.Collector builds
// the richer ProfileRecord (with derived Gflops/EMA) on top of these.
type ProfileSample struct {
	Op             string
	Precision      string
	Queued, Submit uint64
	Start, End     uint64
	ItemsProcessed int64
}

func (o *Override) appendSample(s ProfileSample) {
	if o == nil || o.Samples == nil {
		return
	}
	o.sampleLock.Lock()
	defer o.sampleLock.Unlock()
	cap := o.SampleCap
	if cap <= 0 {
		cap = 1024
	}
	if len(o.Samples) >= cap {
		return
	}
	o.Samples = append(o.Samples, s)
}

// AppendSample records one profiling sample against o, bounded by
// o.SampleCap. It is a no-op if o is nil or profiling is disabled
// (o.Samples == nil); exported so pkg/reduce can record a sample per
// dispatched kernel without reaching into package-private state.
func (o *Override) AppendSample(s ProfileSample) { o.appendSample(s) }

// Context owns exactly one device index, one underlying compute context,
// and one command queue. This design is explicitly single-device,
// single-queue: all resources allocated against a Context must be
// released before Close, and a Context must not be used concurrently
// from more than one goroutine.
type Context struct {
	rt     *Runtime
	device int
	drv    driver

	h     handle
	queue handle

	override *Override
	log      *slog.Logger

	mu       sync.Mutex
	buffers  map[*Buffer]struct{}
	programs map[*Program]struct{}
	kernels  map[*Kernel]struct{}
	events   map[*Event]struct{}
}

// DeviceIndex returns the index into Runtime.Devices this context is
// bound to.
func (ctx *Context) DeviceIndex() int { return ctx.device }

// Device returns the descriptor of the device this context is bound to.
func (ctx *Context) Device() *Device { return &ctx.rt.Devices[ctx.device] }

// Open creates an underlying context and a command queue for
// rt.Devices[deviceIndex]. The queue is profiling-enabled iff
// override.Samples is non-nil. override may be nil.
func (rt *Runtime) Open(deviceIndex int, override *Override) (*Context, error) {
	if deviceIndex < 0 || deviceIndex >= len(rt.Devices) {
		return nil, newError(ErrInvalidDevice, "device index %d out of range [0,%d)", deviceIndex, len(rt.Devices))
	}
	h, err := rt.drv.createContext(deviceIndex)
	if err != nil {
		return nil, wrapError(ErrInvalidContext, err, "open device %d", deviceIndex)
	}
	profiling := override != nil && override.Samples != nil
	q, err := rt.drv.createQueue(h, deviceIndex, profiling)
	if err != nil {
		rt.drv.releaseContext(h)
		return nil, wrapError(ErrInvalidCommandQueue, err, "open device %d", deviceIndex)
	}
	ctx := &Context{
		rt:       rt,
		device:   deviceIndex,
		drv:      rt.drv,
		h:        h,
		queue:    q,
		override: override,
		log:      rt.log.With(slog.Int("device", deviceIndex)),
		buffers:  make(map[*Buffer]struct{}),
		programs: make(map[*Program]struct{}),
		kernels:  make(map[*Kernel]struct{}),
		events:   make(map[*Event]struct{}),
	}
	ctx.log.Debug("context opened", slog.Bool("profiling", profiling))
	return ctx, nil
}

// Close releases the queue then the context. Close panics if any buffer,
// program, kernel, or event allocated against ctx has not been released:
// a leak at close is a precondition violation that aborts the process
// rather than one that is recoverable at runtime.
func (ctx *Context) Close() {
	ctx.mu.Lock()
	outstanding := len(ctx.buffers) + len(ctx.programs) + len(ctx.kernels) + len(ctx.events)
	ctx.mu.Unlock()
	if outstanding != 0 {
		panic(fmt.Sprintf("crt: close device %d with %d outstanding allocations", ctx.device, outstanding))
	}
	ctx.drv.releaseQueue(ctx.queue)
	ctx.drv.releaseContext(ctx.h)
	ctx.log.Debug("context closed")
}

func (ctx *Context) trackBuffer(b *Buffer) {
	ctx.mu.Lock()
	ctx.buffers[b] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *Context) untrackBuffer(b *Buffer) {
	ctx.mu.Lock()
	delete(ctx.buffers, b)
	ctx.mu.Unlock()
}

func (ctx *Context) trackProgram(p *Program) {
	ctx.mu.Lock()
	ctx.programs[p] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *Context) untrackProgram(p *Program) {
	ctx.mu.Lock()
	delete(ctx.programs, p)
	ctx.mu.Unlock()
}

func (ctx *Context) trackKernel(k *Kernel) {
	ctx.mu.Lock()
	ctx.kernels[k] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *Context) untrackKernel(k *Kernel) {
	ctx.mu.Lock()
	delete(ctx.kernels, k)
	ctx.mu.Unlock()
}

func (ctx *Context) trackEvent(e *Event) {
	ctx.mu.Lock()
	ctx.events[e] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *Context) untrackEvent(e *Event) {
	ctx.mu.Lock()
	delete(ctx.events, e)
	ctx.mu.Unlock()
}

// Outstanding returns the current count of live buffers, programs,
// kernels, and events attributable to ctx. It exists to let tests assert
// resource conservation without reaching into package-private fields.
func (ctx *Context) Outstanding() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return len(ctx.buffers) + len(ctx.programs) + len(ctx.kernels) + len(ctx.events)
}
