package crt

import (
	"fmt"
	"unsafe"
)

// Arg is an argument descriptor: a host pointer to a scalar or handle
// and its size in bytes, used to bind kernel arguments by index. Buf, if
// non-nil, takes precedence over Ptr and binds a device buffer argument;
// otherwise Ptr/Bytes describe a plain scalar argument (e.g. an int32
// offset or stride).
type Arg struct {
	Buf   *Buffer
	Ptr   unsafe.Pointer
	Bytes int
}

// ArgBuffer builds an Arg binding a device buffer by index.
func ArgBuffer(b *Buffer) Arg { return Arg{Buf: b} }

// ArgInt32 builds an Arg binding a scalar int32 argument.
func ArgInt32(v *int32) Arg { return Arg{Ptr: unsafe.Pointer(v), Bytes: 4} }

// Event is an opaque completion token for one enqueued NDRange dispatch,
// carrying four nanosecond timestamps once Profile has been called.
type Event struct {
	ctx *Context
	h   handle

	Queued, Submit, Start, End uint64 // nanoseconds; populated by Profile
	profiled                   bool
}

// ElapsedSeconds returns End-Start converted to seconds. Profile must
// have been called first.
func (e *Event) ElapsedSeconds() float64 {
	if e.End <= e.Start {
		return 0
	}
	return float64(e.End-e.Start) / 1e9
}

// Gflops returns floatOps / ElapsedSeconds() / 1e9, or 0 if elapsed is 0.
func (e *Event) Gflops(floatOps int64) float64 {
	s := e.ElapsedSeconds()
	if s <= 0 {
		return 0
	}
	return float64(floatOps) / s / 1e9
}

// GiIntOps returns integerOps / ElapsedSeconds() / 1e9, or 0 if elapsed
// is 0. Serves both the i32 and i64 accounting; callers pick which
// count to pass.
func (e *Event) GiIntOps(integerOps int64) float64 {
	s := e.ElapsedSeconds()
	if s <= 0 {
		return 0
	}
	return float64(integerOps) / s / 1e9
}

// EnqueueRange1D sets k's arguments by index then enqueues a 1-D NDRange
// of size groups*items with local size items. groups must not exceed
// ctx's device's MaxGroups, and items must not exceed MaxItems[0]; both
// are preconditions whose violation is a programmer error, not a
// recoverable runtime condition, so EnqueueRange1D panics rather than
// returning ErrNDRangeExceedsDeviceLimits when violated directly by a
// caller who bypassed pkg/reduce's tile sizing.
func (ctx *Context) EnqueueRange1D(k *Kernel, groups, items int64, args []Arg) (*Event, error) {
	d := ctx.Device()
	if groups > d.MaxGroups || items > d.MaxItems[0] {
		panic(&Error{Code: ErrNDRangeExceedsDeviceLimits, Message: fmt.Sprintf("groups=%d items=%d", groups, items)})
	}
	h, err := ctx.drv.enqueueRange1D(ctx.h, ctx.queue, k.h, groups, items, args)
	if err != nil {
		return nil, wrapError(ErrInvalidKernelArgs, err, "enqueue_range_1d %s", k.name)
	}
	e := &Event{ctx: ctx, h: h}
	ctx.trackEvent(e)
	return e, nil
}

// Wait blocks until every event in events has completed.
func Wait(events []*Event) error {
	hs := make([]handle, len(events))
	var ctx *Context
	for i, e := range events {
		hs[i] = e.h
		ctx = e.ctx
	}
	if ctx == nil {
		return nil
	}
	if err := ctx.drv.wait(hs); err != nil {
		return wrapError(ErrExecStatusErrorForEventsInWaitList, err, "wait")
	}
	return nil
}

// Flush submits all queued commands to the device without waiting for
// completion.
func (ctx *Context) Flush() error {
	if err := ctx.drv.flush(ctx.queue); err != nil {
		return wrapError(ErrInvalidCommandQueue, err, "flush")
	}
	return nil
}

// Finish blocks until every command previously enqueued on ctx's queue
// has completed. This is the correct barrier before any host read of
// device-written memory; events are not chained across calls, so Finish
// (not Wait on a single event) is what the reduction engine relies on
// between chunks.
func (ctx *Context) Finish() error {
	if err := ctx.drv.finish(ctx.queue); err != nil {
		return wrapError(ErrInvalidCommandQueue, err, "finish")
	}
	return nil
}

// Profile populates e's timestamps from the underlying event. Wait (or
// Finish) must be called first.
func (e *Event) Profile() error {
	q, s, st, en, err := e.ctx.drv.profile(e.h)
	if err != nil {
		return wrapError(ErrProfilingInfoNotAvailable, err, "profile")
	}
	e.Queued, e.Submit, e.Start, e.End = q, s, st, en
	e.profiled = true
	return nil
}

// ReleaseEvent releases e. e must not be used afterward.
func (ctx *Context) ReleaseEvent(e *Event) {
	ctx.untrackEvent(e)
	ctx.drv.releaseEvent(e.h)
}
