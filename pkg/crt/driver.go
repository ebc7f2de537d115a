package crt

import "unsafe"

// handle is an opaque driver-owned resource identifier: a platform,
// device, context, queue, buffer, program, kernel, or event id. It is
// deliberately an untyped integer-sized value (matching the C source's
// untyped pointers, see §9 "Raw handles and ownership") rather than an
// unsafe.Pointer, so that every file outside driver_opencl.go can be
// compiled without cgo.
type handle uintptr

// driver is the thin seam between the CRT's typed, Go-idiomatic surface
// and the actual compute runtime binding. Exactly one implementation is
// linked in per build: driver_opencl.go (build tag "opencl") binds to the
// system OpenCL library via dlopen/dlsym so the package never hard-links
// libOpenCL at build or load time; driver_stub.go (build tag "!opencl",
// the default) fails every call with ErrCompilerNotAvailable so the
// module keeps compiling on a machine with no GPU toolchain installed.
type driver interface {
	// enumerate walks every platform and populates the bounded device
	// table. Returns at most maxDevices devices across all platforms.
	enumerate() ([]Device, error)

	createContext(deviceIndex int) (handle, error)
	createQueue(ctx handle, deviceIndex int, profiling bool) (handle, error)
	releaseQueue(q handle)
	releaseContext(ctx handle)

	createBuffer(ctx handle, access Access, bytes int64) (handle, error)
	releaseBuffer(mem handle)
	mapBuffer(ctx, queue, mem handle, access MapAccess, offset, bytes int64) (unsafe.Pointer, error)
	unmapBuffer(ctx, queue, mem handle, ptr unsafe.Pointer) error

	buildProgram(ctx handle, deviceIndex int, source []byte, options string) (handle, string, error)
	createKernel(program handle, name string) (handle, error)
	releaseProgram(program handle)
	releaseKernel(kernel handle)

	enqueueRange1D(ctx, queue, kernel handle, groups, items int64, args []Arg) (handle, error)
	wait(events []handle) error
	flush(queue handle) error
	finish(queue handle) error

	profile(event handle) (queued, submit, start, end uint64, err error)
	releaseEvent(event handle)
}

// newDriver is defined in driver_opencl.go ("opencl" build tag) or
// driver_stub.go ("!opencl", the default) and returns the sole driver
// implementation linked into this build.

// rawPlatform/rawDeviceInfo intentionally do not exist as separate types:
// driver.enumerate returns fully-populated []Device directly, since no
// caller outside driver_opencl.go ever needs the raw platform/device ids
// before they are folded into the Device table.
