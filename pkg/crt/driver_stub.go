//go:build !opencl

package crt

import "unsafe"

// stubDriver is linked in when the module is built without the "opencl"
// tag (the default). Every entry point fails cleanly with
// ErrCompilerNotAvailable instead of the package requiring cgo and a
// system OpenCL install just to type-check.
type stubDriver struct{}

func newDriver() driver { return stubDriver{} }

const notCompiled = "OpenCL support not compiled; build with -tags opencl"

func (stubDriver) enumerate() ([]Device, error) {
	return nil, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) createContext(int) (handle, error) {
	return 0, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) createQueue(handle, int, bool) (handle, error) {
	return 0, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) releaseQueue(handle)   {}
func (stubDriver) releaseContext(handle) {}

func (stubDriver) createBuffer(handle, Access, int64) (handle, error) {
	return 0, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) releaseBuffer(handle) {}

func (stubDriver) mapBuffer(_, _, _ handle, _ MapAccess, _, _ int64) (unsafe.Pointer, error) {
	return nil, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) unmapBuffer(_, _, _ handle, _ unsafe.Pointer) error {
	return newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) buildProgram(handle, int, []byte, string) (handle, string, error) {
	return 0, "", newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) createKernel(handle, string) (handle, error) {
	return 0, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) releaseProgram(handle) {}
func (stubDriver) releaseKernel(handle)  {}

func (stubDriver) enqueueRange1D(_, _, _ handle, _, _ int64, _ []Arg) (handle, error) {
	return 0, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) wait([]handle) error   { return newError(ErrCompilerNotAvailable, notCompiled) }
func (stubDriver) flush(handle) error    { return newError(ErrCompilerNotAvailable, notCompiled) }
func (stubDriver) finish(handle) error   { return newError(ErrCompilerNotAvailable, notCompiled) }

func (stubDriver) profile(handle) (uint64, uint64, uint64, uint64, error) {
	return 0, 0, 0, 0, newError(ErrCompilerNotAvailable, notCompiled)
}

func (stubDriver) releaseEvent(handle) {}
