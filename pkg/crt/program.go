package crt

// Program is an opaque compiled artifact bound to the context it was
// built against. It carries no explicit precision field here — the
// kernel manager (pkg/kernelmgr) is the layer that remembers which
// precision macro set produced a given Program, since the CRT facade
// itself is precision-agnostic (it only ever sees source bytes and a
// build-options string).
type Program struct {
	ctx *Context
	h   handle
}

// Kernel is an opaque executable entry point bound to a Program.
type Kernel struct {
	ctx  *Context
	h    handle
	name string
}

// Compile synchronously builds source against ctx's device using
// options as the build-options string. On failure, Compile fetches the
// build log for the target device and attaches it to the returned
// error.
func (ctx *Context) Compile(source []byte, options string) (*Program, error) {
	h, buildLog, err := ctx.drv.buildProgram(ctx.h, ctx.device, source, options)
	if err != nil {
		return nil, &Error{Code: ErrBuildProgramFailure, Message: "compile", BuildLog: buildLog, Err: err}
	}
	p := &Program{ctx: ctx, h: h}
	ctx.trackProgram(p)
	return p, nil
}

// CreateKernel creates a kernel bound to the named entry point in p.
func (p *Program) CreateKernel(name string) (*Kernel, error) {
	h, err := p.ctx.drv.createKernel(p.h, name)
	if err != nil {
		return nil, wrapError(ErrInvalidKernelName, err, "create_kernel %q", name)
	}
	k := &Kernel{ctx: p.ctx, h: h, name: name}
	p.ctx.trackKernel(k)
	return k, nil
}

// Name returns the entry-point name k was created with.
func (k *Kernel) Name() string { return k.name }

// ReleaseProgram releases p. p must not be used afterward.
func (ctx *Context) ReleaseProgram(p *Program) {
	ctx.untrackProgram(p)
	ctx.drv.releaseProgram(p.h)
}

// ReleaseKernel releases k. k must not be used afterward.
func (ctx *Context) ReleaseKernel(k *Kernel) {
	ctx.untrackKernel(k)
	ctx.drv.releaseKernel(k.h)
}
