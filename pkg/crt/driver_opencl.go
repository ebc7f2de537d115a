//go:build opencl

package crt

/*
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120
#cgo linux LDFLAGS: -ldl
#cgo darwin LDFLAGS: -ldl

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>
#include <string.h>

#ifdef _WIN32
#include <windows.h>
#else
#include <dlfcn.h>
#endif

// The facade soft-binds to the system OpenCL runtime at first use instead
// of linking -lOpenCL at build time, so the binary loads on a machine
// with no GPU driver installed. Headers are included above for type
// definitions only; no OpenCL symbol is referenced by name at link time.

typedef cl_int (*fn_clGetPlatformIDs)(cl_uint, cl_platform_id*, cl_uint*);
typedef cl_int (*fn_clGetDeviceIDs)(cl_platform_id, cl_device_type, cl_uint, cl_device_id*, cl_uint*);
typedef cl_int (*fn_clGetDeviceInfo)(cl_device_id, cl_device_info, size_t, void*, size_t*);
typedef cl_context (*fn_clCreateContext)(const cl_context_properties*, cl_uint, const cl_device_id*, void*, void*, cl_int*);
typedef cl_command_queue (*fn_clCreateCommandQueue)(cl_context, cl_device_id, cl_command_queue_properties, cl_int*);
typedef cl_int (*fn_clReleaseCommandQueue)(cl_command_queue);
typedef cl_int (*fn_clReleaseContext)(cl_context);
typedef cl_mem (*fn_clCreateBuffer)(cl_context, cl_mem_flags, size_t, void*, cl_int*);
typedef cl_int (*fn_clReleaseMemObject)(cl_mem);
typedef void* (*fn_clEnqueueMapBuffer)(cl_command_queue, cl_mem, cl_bool, cl_map_flags, size_t, size_t, cl_uint, const cl_event*, cl_event*, cl_int*);
typedef cl_int (*fn_clEnqueueUnmapMemObject)(cl_command_queue, cl_mem, void*, cl_uint, const cl_event*, cl_event*);
typedef cl_program (*fn_clCreateProgramWithSource)(cl_context, cl_uint, const char**, const size_t*, cl_int*);
typedef cl_int (*fn_clBuildProgram)(cl_program, cl_uint, const cl_device_id*, const char*, void*, void*);
typedef cl_int (*fn_clGetProgramBuildInfo)(cl_program, cl_device_id, cl_program_build_info, size_t, void*, size_t*);
typedef cl_kernel (*fn_clCreateKernel)(cl_program, const char*, cl_int*);
typedef cl_int (*fn_clReleaseProgram)(cl_program);
typedef cl_int (*fn_clReleaseKernel)(cl_kernel);
typedef cl_int (*fn_clSetKernelArg)(cl_kernel, cl_uint, size_t, const void*);
typedef cl_int (*fn_clEnqueueNDRangeKernel)(cl_command_queue, cl_kernel, cl_uint, const size_t*, const size_t*, const size_t*, cl_uint, const cl_event*, cl_event*);
typedef cl_int (*fn_clWaitForEvents)(cl_uint, const cl_event*);
typedef cl_int (*fn_clFlush)(cl_command_queue);
typedef cl_int (*fn_clFinish)(cl_command_queue);
typedef cl_int (*fn_clGetEventProfilingInfo)(cl_event, cl_profiling_info, size_t, void*, size_t*);
typedef cl_int (*fn_clReleaseEvent)(cl_event);

typedef struct {
    fn_clGetPlatformIDs          GetPlatformIDs;
    fn_clGetDeviceIDs            GetDeviceIDs;
    fn_clGetDeviceInfo           GetDeviceInfo;
    fn_clCreateContext           CreateContext;
    fn_clCreateCommandQueue      CreateCommandQueue;
    fn_clReleaseCommandQueue     ReleaseCommandQueue;
    fn_clReleaseContext          ReleaseContext;
    fn_clCreateBuffer            CreateBuffer;
    fn_clReleaseMemObject        ReleaseMemObject;
    fn_clEnqueueMapBuffer        EnqueueMapBuffer;
    fn_clEnqueueUnmapMemObject   EnqueueUnmapMemObject;
    fn_clCreateProgramWithSource CreateProgramWithSource;
    fn_clBuildProgram            BuildProgram;
    fn_clGetProgramBuildInfo     GetProgramBuildInfo;
    fn_clCreateKernel            CreateKernel;
    fn_clReleaseProgram          ReleaseProgram;
    fn_clReleaseKernel           ReleaseKernel;
    fn_clSetKernelArg            SetKernelArg;
    fn_clEnqueueNDRangeKernel    EnqueueNDRangeKernel;
    fn_clWaitForEvents           WaitForEvents;
    fn_clFlush                   Flush;
    fn_clFinish                  Finish;
    fn_clGetEventProfilingInfo   GetEventProfilingInfo;
    fn_clReleaseEvent            ReleaseEvent;
    int bound;
} crt_ocl_api;

static crt_ocl_api crt_api;

#ifdef _WIN32
static void* crt_dlopen(void) {
    return (void*)LoadLibraryA("OpenCL.dll");
}
static void* crt_dlsym(void* h, const char* name) {
    return (void*)GetProcAddress((HMODULE)h, name);
}
#else
static void* crt_dlopen(void) {
#ifdef __APPLE__
    return dlopen("/System/Library/Frameworks/OpenCL.framework/OpenCL", RTLD_NOW);
#else
    void* h = dlopen("libOpenCL.so.1", RTLD_NOW);
    if (!h) h = dlopen("libOpenCL.so", RTLD_NOW);
    return h;
#endif
}
static void* crt_dlsym(void* h, const char* name) {
    return dlsym(h, name);
}
#endif

// crt_bind resolves every entry point this facade needs. Returns 0 on
// success, -1 if the library could not be opened, -2 if any symbol was
// missing (a driver too old to support this facade).
static int crt_bind(void) {
    if (crt_api.bound) return 0;
    void* h = crt_dlopen();
    if (!h) return -1;
    #define BIND(field, name) do { \
        crt_api.field = (fn_##name)crt_dlsym(h, #name); \
        if (!crt_api.field) return -2; \
    } while (0)
    BIND(GetPlatformIDs, clGetPlatformIDs);
    BIND(GetDeviceIDs, clGetDeviceIDs);
    BIND(GetDeviceInfo, clGetDeviceInfo);
    BIND(CreateContext, clCreateContext);
    BIND(CreateCommandQueue, clCreateCommandQueue);
    BIND(ReleaseCommandQueue, clReleaseCommandQueue);
    BIND(ReleaseContext, clReleaseContext);
    BIND(CreateBuffer, clCreateBuffer);
    BIND(ReleaseMemObject, clReleaseMemObject);
    BIND(EnqueueMapBuffer, clEnqueueMapBuffer);
    BIND(EnqueueUnmapMemObject, clEnqueueUnmapMemObject);
    BIND(CreateProgramWithSource, clCreateProgramWithSource);
    BIND(BuildProgram, clBuildProgram);
    BIND(GetProgramBuildInfo, clGetProgramBuildInfo);
    BIND(CreateKernel, clCreateKernel);
    BIND(ReleaseProgram, clReleaseProgram);
    BIND(ReleaseKernel, clReleaseKernel);
    BIND(SetKernelArg, clSetKernelArg);
    BIND(EnqueueNDRangeKernel, clEnqueueNDRangeKernel);
    BIND(WaitForEvents, clWaitForEvents);
    BIND(Flush, clFlush);
    BIND(Finish, clFinish);
    BIND(GetEventProfilingInfo, clGetEventProfilingInfo);
    BIND(ReleaseEvent, clReleaseEvent);
    #undef BIND
    crt_api.bound = 1;
    return 0;
}
*/
import "C"

import (
	"fmt"
	"strings"
	"unsafe"
)

// oclDriver is the cgo-backed driver implementation. devCache mirrors the
// platform/device ids discovered at enumerate() time, indexed the same
// way as Runtime.Devices, so later calls can resolve a Device index back
// to the cl_device_id/cl_platform_id pair the C layer needs.
type oclDriver struct {
	platformIDs []C.cl_platform_id
	deviceIDs   []C.cl_device_id
}

func newDriver() driver { return &oclDriver{} }

func oclError(code C.cl_int, op string) error {
	if code == C.CL_SUCCESS {
		return nil
	}
	return fmt.Errorf("%s: opencl status %d", op, int(code))
}

func (d *oclDriver) enumerate() ([]Device, error) {
	if rc := C.crt_bind(); rc != 0 {
		return nil, fmt.Errorf("opencl runtime not found (dlopen rc=%d)", int(rc))
	}
	var platformCount C.cl_uint
	if rc := C.crt_api.GetPlatformIDs(0, nil, &platformCount); rc != C.CL_SUCCESS || platformCount == 0 {
		return nil, fmt.Errorf("no opencl platforms")
	}
	platforms := make([]C.cl_platform_id, platformCount)
	C.crt_api.GetPlatformIDs(platformCount, &platforms[0], nil)

	var devices []Device
	var allDeviceIDs []C.cl_device_id
	var allPlatformIDs []C.cl_platform_id

	for _, plat := range platforms {
		var devCount C.cl_uint
		if rc := C.crt_api.GetDeviceIDs(plat, C.CL_DEVICE_TYPE_ALL, 0, nil, &devCount); rc != C.CL_SUCCESS || devCount == 0 {
			continue
		}
		ids := make([]C.cl_device_id, devCount)
		C.crt_api.GetDeviceIDs(plat, C.CL_DEVICE_TYPE_ALL, devCount, &ids[0], nil)
		for _, id := range ids {
			if len(devices) >= maxDevices {
				break
			}
			dev, err := d.describeDevice(id, len(devices))
			if err != nil {
				continue
			}
			devices = append(devices, dev)
			allDeviceIDs = append(allDeviceIDs, id)
			allPlatformIDs = append(allPlatformIDs, plat)
		}
	}
	d.deviceIDs = allDeviceIDs
	d.platformIDs = allPlatformIDs
	return devices, nil
}

func (d *oclDriver) getUint64(id C.cl_device_id, param C.cl_device_info) uint64 {
	var v C.cl_ulong
	C.crt_api.GetDeviceInfo(id, param, C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil)
	return uint64(v)
}

func (d *oclDriver) getUint(id C.cl_device_id, param C.cl_device_info) uint32 {
	var v C.cl_uint
	C.crt_api.GetDeviceInfo(id, param, C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil)
	return uint32(v)
}

func (d *oclDriver) getString(id C.cl_device_id, param C.cl_device_info, max int) string {
	buf := make([]byte, max)
	C.crt_api.GetDeviceInfo(id, param, C.size_t(max), unsafe.Pointer(&buf[0]), nil)
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

func (d *oclDriver) describeDevice(id C.cl_device_id, index int) (Device, error) {
	dev := Device{Index: index}
	dev.Name = d.getString(id, C.CL_DEVICE_NAME, 128)
	dev.Vendor = d.getString(id, C.CL_DEVICE_VENDOR, 128)
	dev.ClockMHz = int64(d.getUint(id, C.CL_DEVICE_MAX_CLOCK_FREQUENCY))
	dev.GlobalMemory = int64(d.getUint64(id, C.CL_DEVICE_GLOBAL_MEM_SIZE))
	dev.LocalMemory = int64(d.getUint64(id, C.CL_DEVICE_LOCAL_MEM_SIZE))
	dev.ComputeUnits = int64(d.getUint(id, C.CL_DEVICE_MAX_COMPUTE_UNITS))

	var maxGroups C.size_t
	C.crt_api.GetDeviceInfo(id, C.CL_DEVICE_MAX_WORK_GROUP_SIZE, C.size_t(unsafe.Sizeof(maxGroups)), unsafe.Pointer(&maxGroups), nil)
	dev.MaxGroups = int64(maxGroups)

	var items [3]C.size_t
	C.crt_api.GetDeviceInfo(id, C.CL_DEVICE_MAX_WORK_ITEM_SIZES, C.size_t(unsafe.Sizeof(items)), unsafe.Pointer(&items[0]), nil)
	dev.MaxItems = [3]int64{int64(items[0]), int64(items[1]), int64(items[2])}

	dev.FloatConfig = FPConfig(d.getUint64(id, C.CL_DEVICE_SINGLE_FP_CONFIG))
	dev.DoubleConfig = FPConfig(d.getUint64(id, C.CL_DEVICE_DOUBLE_FP_CONFIG))

	extensions := d.getString(id, C.CL_DEVICE_EXTENSIONS, 2048)
	if containsExtension(extensions, "cl_khr_fp16") {
		dev.HalfConfig = fpFP16Capability
	}

	langVersion := d.getString(id, C.CL_DEVICE_OPENCL_C_VERSION, 64)
	major, minor := parseCLVersion(langVersion)
	dev.Version.LangMajor, dev.Version.LangMinor = major, minor
	runtimeVersion := d.getString(id, C.CL_DEVICE_VERSION, 64)
	rmajor, rminor := parseCLVersion(runtimeVersion)
	dev.Version.RuntimeMajor, dev.Version.RuntimeMinor = rmajor, rminor
	return dev, nil
}

func (d *oclDriver) createContext(deviceIndex int) (handle, error) {
	id := d.deviceIDs[deviceIndex]
	var rc C.cl_int
	ctx := C.crt_api.CreateContext(nil, 1, &id, nil, nil, &rc)
	if rc != C.CL_SUCCESS {
		return 0, oclError(rc, "clCreateContext")
	}
	return handle(uintptr(unsafe.Pointer(ctx))), nil
}

func (d *oclDriver) createQueue(ctx handle, deviceIndex int, profiling bool) (handle, error) {
	id := d.deviceIDs[deviceIndex]
	var props C.cl_command_queue_properties
	if profiling {
		props = C.CL_QUEUE_PROFILING_ENABLE
	}
	var rc C.cl_int
	q := C.crt_api.CreateCommandQueue(ctxOf(ctx), id, props, &rc)
	if rc != C.CL_SUCCESS {
		return 0, oclError(rc, "clCreateCommandQueue")
	}
	return handle(uintptr(unsafe.Pointer(q))), nil
}

func (d *oclDriver) releaseQueue(q handle)   { C.crt_api.ReleaseCommandQueue(queueOf(q)) }
func (d *oclDriver) releaseContext(c handle) { C.crt_api.ReleaseContext(ctxOf(c)) }

func (d *oclDriver) createBuffer(ctx handle, access Access, bytes int64) (handle, error) {
	var flags C.cl_mem_flags
	switch access {
	case AccessReadOnly:
		flags = C.CL_MEM_READ_ONLY
	case AccessWriteOnly:
		flags = C.CL_MEM_WRITE_ONLY
	default:
		flags = C.CL_MEM_READ_WRITE
	}
	flags |= C.CL_MEM_ALLOC_HOST_PTR // pinned, host-mappable
	var rc C.cl_int
	m := C.crt_api.CreateBuffer(ctxOf(ctx), flags, C.size_t(bytes), nil, &rc)
	if rc != C.CL_SUCCESS {
		return 0, oclError(rc, "clCreateBuffer")
	}
	return handle(uintptr(unsafe.Pointer(m))), nil
}

func (d *oclDriver) releaseBuffer(m handle) { C.crt_api.ReleaseMemObject(memOf(m)) }

func (d *oclDriver) mapBuffer(ctx, queue, mem handle, access MapAccess, offset, bytes int64) (unsafe.Pointer, error) {
	var flags C.cl_map_flags
	switch access {
	case MapRead:
		flags = C.CL_MAP_READ
	case MapWriteInvalidate:
		flags = C.CL_MAP_WRITE_INVALIDATE_REGION
	default:
		flags = C.CL_MAP_READ | C.CL_MAP_WRITE
	}
	var rc C.cl_int
	ptr := C.crt_api.EnqueueMapBuffer(queueOf(queue), memOf(mem), C.CL_TRUE, flags,
		C.size_t(offset), C.size_t(bytes), 0, nil, nil, &rc)
	if rc != C.CL_SUCCESS {
		return nil, oclError(rc, "clEnqueueMapBuffer")
	}
	return ptr, nil
}

func (d *oclDriver) unmapBuffer(ctx, queue, mem handle, ptr unsafe.Pointer) error {
	rc := C.crt_api.EnqueueUnmapMemObject(queueOf(queue), memOf(mem), ptr, 0, nil, nil)
	return oclError(rc, "clEnqueueUnmapMemObject")
}

func (d *oclDriver) buildProgram(ctx handle, deviceIndex int, source []byte, options string) (handle, string, error) {
	csrc := C.CString(string(source))
	defer C.free(unsafe.Pointer(csrc))
	length := C.size_t(len(source))
	var rc C.cl_int
	p := C.crt_api.CreateProgramWithSource(ctxOf(ctx), 1, &csrc, &length, &rc)
	if rc != C.CL_SUCCESS {
		return 0, "", oclError(rc, "clCreateProgramWithSource")
	}
	copts := C.CString(options)
	defer C.free(unsafe.Pointer(copts))
	id := d.deviceIDs[deviceIndex]
	rc = C.crt_api.BuildProgram(p, 1, &id, copts, nil, nil)
	if rc != C.CL_SUCCESS {
		var logSize C.size_t
		C.crt_api.GetProgramBuildInfo(p, id, C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
		logBuf := make([]byte, logSize)
		if logSize > 0 {
			C.crt_api.GetProgramBuildInfo(p, id, C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&logBuf[0]), nil)
		}
		return 0, string(logBuf), oclError(rc, "clBuildProgram")
	}
	return handle(uintptr(unsafe.Pointer(p))), "", nil
}

func (d *oclDriver) createKernel(program handle, name string) (handle, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var rc C.cl_int
	k := C.crt_api.CreateKernel(programOf(program), cname, &rc)
	if rc != C.CL_SUCCESS {
		return 0, oclError(rc, "clCreateKernel "+name)
	}
	return handle(uintptr(unsafe.Pointer(k))), nil
}

func (d *oclDriver) releaseProgram(p handle) { C.crt_api.ReleaseProgram(programOf(p)) }
func (d *oclDriver) releaseKernel(k handle)  { C.crt_api.ReleaseKernel(kernelOf(k)) }

func (d *oclDriver) enqueueRange1D(ctx, queue, kernel handle, groups, items int64, args []Arg) (handle, error) {
	k := kernelOf(kernel)
	for i, a := range args {
		var rc C.cl_int
		if a.Buf != nil {
			m := memOf(a.Buf.h)
			rc = C.crt_api.SetKernelArg(k, C.cl_uint(i), C.size_t(unsafe.Sizeof(m)), unsafe.Pointer(&m))
		} else {
			rc = C.crt_api.SetKernelArg(k, C.cl_uint(i), C.size_t(a.Bytes), a.Ptr)
		}
		if rc != C.CL_SUCCESS {
			return 0, oclError(rc, fmt.Sprintf("clSetKernelArg[%d]", i))
		}
	}
	global := C.size_t(groups * items)
	local := C.size_t(items)
	var event C.cl_event
	rc := C.crt_api.EnqueueNDRangeKernel(queueOf(queue), k, 1, nil, &global, &local, 0, nil, &event)
	if rc != C.CL_SUCCESS {
		return 0, oclError(rc, "clEnqueueNDRangeKernel")
	}
	return handle(uintptr(unsafe.Pointer(event))), nil
}

func (d *oclDriver) wait(events []handle) error {
	if len(events) == 0 {
		return nil
	}
	cevents := make([]C.cl_event, len(events))
	for i, e := range events {
		cevents[i] = eventOf(e)
	}
	rc := C.crt_api.WaitForEvents(C.cl_uint(len(cevents)), &cevents[0])
	return oclError(rc, "clWaitForEvents")
}

func (d *oclDriver) flush(queue handle) error {
	return oclError(C.crt_api.Flush(queueOf(queue)), "clFlush")
}

func (d *oclDriver) finish(queue handle) error {
	return oclError(C.crt_api.Finish(queueOf(queue)), "clFinish")
}

func (d *oclDriver) profile(event handle) (uint64, uint64, uint64, uint64, error) {
	e := eventOf(event)
	get := func(param C.cl_profiling_info) uint64 {
		var v C.cl_ulong
		C.crt_api.GetEventProfilingInfo(e, param, C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil)
		return uint64(v)
	}
	return get(C.CL_PROFILING_COMMAND_QUEUED),
		get(C.CL_PROFILING_COMMAND_SUBMIT),
		get(C.CL_PROFILING_COMMAND_START),
		get(C.CL_PROFILING_COMMAND_END), nil
}

func (d *oclDriver) releaseEvent(e handle) { C.crt_api.ReleaseEvent(eventOf(e)) }

// The handle<->cl_* conversions below round-trip an opaque OpenCL pointer
// through a uintptr so every file outside this one stays cgo-free; see
// driver.go's doc comment on the handle type.
func ctxOf(h handle) C.cl_context       { return C.cl_context(unsafe.Pointer(uintptr(h))) }
func queueOf(h handle) C.cl_command_queue { return C.cl_command_queue(unsafe.Pointer(uintptr(h))) }
func memOf(h handle) C.cl_mem           { return C.cl_mem(unsafe.Pointer(uintptr(h))) }
func programOf(h handle) C.cl_program   { return C.cl_program(unsafe.Pointer(uintptr(h))) }
func kernelOf(h handle) C.cl_kernel     { return C.cl_kernel(unsafe.Pointer(uintptr(h))) }
func eventOf(h handle) C.cl_event       { return C.cl_event(unsafe.Pointer(uintptr(h))) }

func containsExtension(extensions, name string) bool {
	for _, field := range strings.Fields(extensions) {
		if field == name {
			return true
		}
	}
	return false
}

// parseCLVersion extracts "major.minor" out of strings like
// "OpenCL C 1.2" or "OpenCL 2.0 Mesa ...".
func parseCLVersion(s string) (int, int) {
	major, minor := 1, 0
	digits := false
	mi := 0
	val := [2]int{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			val[mi] = val[mi]*10 + int(c-'0')
			digits = true
		case c == '.' && digits && mi == 0:
			mi = 1
		case digits:
			if mi == 1 {
				major, minor = val[0], val[1]
				return major, minor
			}
			digits = false
			val[0], val[1] = 0, 0
		default:
		}
	}
	if digits && mi == 1 {
		return val[0], val[1]
	}
	return major, minor
}
