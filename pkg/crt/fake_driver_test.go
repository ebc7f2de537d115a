package crt

import (
	"log/slog"
	"unsafe"
)

// fakeDriver is an in-memory stand-in for the cgo OpenCL backend, used
// by tests that exercise Context/Buffer/Program bookkeeping without
// requiring real hardware. It never actually runs kernels.
type fakeDriver struct {
	nextHandle handle
	buffers    map[handle][]byte
}

func newFakeRuntime(devices []Device) *Runtime {
	drv := &fakeDriver{nextHandle: 1, buffers: make(map[handle][]byte)}
	return &Runtime{Devices: devices, drv: drv, log: slog.New(slog.NewTextHandler(nopWriter{}, nil))}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (d *fakeDriver) alloc() handle {
	h := d.nextHandle
	d.nextHandle++
	return h
}

func (d *fakeDriver) enumerate() ([]Device, error) { return nil, nil }

func (d *fakeDriver) createContext(int) (handle, error) { return d.alloc(), nil }
func (d *fakeDriver) createQueue(handle, int, bool) (handle, error) { return d.alloc(), nil }
func (d *fakeDriver) releaseQueue(handle)   {}
func (d *fakeDriver) releaseContext(handle) {}

func (d *fakeDriver) createBuffer(ctx handle, access Access, bytes int64) (handle, error) {
	h := d.alloc()
	d.buffers[h] = make([]byte, bytes)
	return h, nil
}

func (d *fakeDriver) releaseBuffer(mem handle) { delete(d.buffers, mem) }

func (d *fakeDriver) mapBuffer(ctx, queue, mem handle, access MapAccess, offset, bytes int64) (unsafe.Pointer, error) {
	buf := d.buffers[mem]
	return unsafe.Pointer(&buf[offset]), nil
}

func (d *fakeDriver) unmapBuffer(ctx, queue, mem handle, ptr unsafe.Pointer) error { return nil }

func (d *fakeDriver) buildProgram(ctx handle, deviceIndex int, source []byte, options string) (handle, string, error) {
	return d.alloc(), "", nil
}

func (d *fakeDriver) createKernel(program handle, name string) (handle, error) { return d.alloc(), nil }
func (d *fakeDriver) releaseProgram(handle)                                    {}
func (d *fakeDriver) releaseKernel(handle)                                     {}

func (d *fakeDriver) enqueueRange1D(ctx, queue, kernel handle, groups, items int64, args []Arg) (handle, error) {
	return d.alloc(), nil
}

func (d *fakeDriver) wait([]handle) error { return nil }
func (d *fakeDriver) flush(handle) error  { return nil }
func (d *fakeDriver) finish(handle) error { return nil }

func (d *fakeDriver) profile(handle) (uint64, uint64, uint64, uint64, error) {
	return 100, 200, 300, 400, nil
}

func (d *fakeDriver) releaseEvent(handle) {}
