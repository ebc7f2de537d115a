package crt

import "fmt"

// Code identifies a member of the CRT error taxonomy: the device,
// resource, program/kernel, and execution failures the underlying
// runtime reports, plus usage errors local to this library with no
// OpenCL equivalent.
type Code int

const (
	// Device/platform errors.
	ErrDeviceNotFound Code = iota + 1
	ErrDeviceNotAvailable
	ErrInvalidPlatform
	ErrInvalidDevice
	ErrInvalidContext
	ErrInvalidCommandQueue

	// Resource errors.
	ErrMemObjectAllocationFailure
	ErrOutOfResources
	ErrOutOfHostMemory
	ErrInvalidBufferSize
	ErrInvalidHostPtr
	ErrInvalidMemObject

	// Program/kernel errors.
	ErrCompilerNotAvailable
	ErrBuildProgramFailure
	ErrLinkProgramFailure
	ErrInvalidKernelName
	ErrInvalidKernelDefinition
	ErrInvalidKernelArgs
	ErrInvalidWorkDimension
	ErrInvalidWorkGroupSize
	ErrInvalidWorkItemSize

	// Execution errors.
	ErrInvalidEvent
	ErrInvalidEventWaitList
	ErrExecStatusErrorForEventsInWaitList
	ErrProfilingInfoNotAvailable

	// Usage errors (core-local, no OpenCL equivalent).
	ErrForeignBuffer
	ErrPrecisionNotSupported
	ErrNDRangeExceedsDeviceLimits
	ErrBufferStillMapped
)

var symbols = map[Code]string{
	ErrDeviceNotFound:                      "CRT_DEVICE_NOT_FOUND",
	ErrDeviceNotAvailable:                  "CRT_DEVICE_NOT_AVAILABLE",
	ErrInvalidPlatform:                     "CRT_INVALID_PLATFORM",
	ErrInvalidDevice:                       "CRT_INVALID_DEVICE",
	ErrInvalidContext:                      "CRT_INVALID_CONTEXT",
	ErrInvalidCommandQueue:                 "CRT_INVALID_COMMAND_QUEUE",
	ErrMemObjectAllocationFailure:          "CRT_MEM_OBJECT_ALLOCATION_FAILURE",
	ErrOutOfResources:                      "CRT_OUT_OF_RESOURCES",
	ErrOutOfHostMemory:                     "CRT_OUT_OF_HOST_MEMORY",
	ErrInvalidBufferSize:                   "CRT_INVALID_BUFFER_SIZE",
	ErrInvalidHostPtr:                      "CRT_INVALID_HOST_PTR",
	ErrInvalidMemObject:                    "CRT_INVALID_MEM_OBJECT",
	ErrCompilerNotAvailable:                "CRT_COMPILER_NOT_AVAILABLE",
	ErrBuildProgramFailure:                 "CRT_BUILD_PROGRAM_FAILURE",
	ErrLinkProgramFailure:                  "CRT_LINK_PROGRAM_FAILURE",
	ErrInvalidKernelName:                   "CRT_INVALID_KERNEL_NAME",
	ErrInvalidKernelDefinition:             "CRT_INVALID_KERNEL_DEFINITION",
	ErrInvalidKernelArgs:                   "CRT_INVALID_KERNEL_ARGS",
	ErrInvalidWorkDimension:                "CRT_INVALID_WORK_DIMENSION",
	ErrInvalidWorkGroupSize:                "CRT_INVALID_WORK_GROUP_SIZE",
	ErrInvalidWorkItemSize:                 "CRT_INVALID_WORK_ITEM_SIZE",
	ErrInvalidEvent:                        "CRT_INVALID_EVENT",
	ErrInvalidEventWaitList:                "CRT_INVALID_EVENT_WAIT_LIST",
	ErrExecStatusErrorForEventsInWaitList:  "CRT_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST",
	ErrProfilingInfoNotAvailable:           "CRT_PROFILING_INFO_NOT_AVAILABLE",
	ErrForeignBuffer:                       "CRT_FOREIGN_BUFFER",
	ErrPrecisionNotSupported:               "CRT_PRECISION_NOT_SUPPORTED",
	ErrNDRangeExceedsDeviceLimits:          "CRT_NDRANGE_EXCEEDS_DEVICE_LIMITS",
	ErrBufferStillMapped:                   "CRT_BUFFER_STILL_MAPPED",
}

// Error is the typed error every CRT operation fails with: a numeric code,
// a stable symbolic name, an optional build log (populated only for
// ErrBuildProgramFailure), and the underlying driver error if any.
type Error struct {
	Code     Code
	Message  string
	BuildLog string
	Err      error
}

func (e *Error) Error() string {
	if e.BuildLog != "" {
		return fmt.Sprintf("%s: %s\n--- build log ---\n%s", ErrorString(e.Code), e.Message, e.BuildLog)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", ErrorString(e.Code), e.Message)
	}
	return ErrorString(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrorString returns a stable, human-readable string of the form
// "<decimal-code> <SYMBOLIC_NAME>" for codes in the documented taxonomy
// and "<decimal-code> Unknown error" otherwise. The result is bounded
// to 128 bytes so callers can marshal it into fixed-size records.
func ErrorString(code Code) string {
	name, ok := symbols[code]
	if !ok {
		name = "Unknown error"
	}
	s := fmt.Sprintf("%d %s", int(code), name)
	if len(s) > 128 {
		s = s[:128]
	}
	return s
}
