package crt

import "fmt"

// FPConfig is the bitset describing floating-point capabilities of a
// device for one precision, matching the OpenCL float_fp_config /
// double_fp_config bitfields.
type FPConfig uint32

const (
	FPDenorm                   FPConfig = 1 << 0
	FPInfNaN                   FPConfig = 1 << 1
	FPRoundToNearest           FPConfig = 1 << 2
	FPRoundToZero              FPConfig = 1 << 3
	FPRoundToInf               FPConfig = 1 << 4
	FPFMA                      FPConfig = 1 << 5
	FPSoftFloat                FPConfig = 1 << 6
	FPCorrectlyRoundedDivSqrt  FPConfig = 1 << 7
	// fpFP16Capability is not an OpenCL fp-config bit; it is derived from
	// the device's extension string (cl_khr_fp16) at init time and stashed
	// alongside float/double config so build-eligibility can be decided
	// from one struct (see Device.HasFP16).
	fpFP16Capability FPConfig = 1 << 31
)

// Has reports whether every bit in want is set in c.
func (c FPConfig) Has(want FPConfig) bool { return c&want == want }

// Device is the immutable descriptor populated once at Init and never
// mutated afterward. Index is this device's position in Runtime.Devices
// and is the value callers pass to Open.
type Device struct {
	Index int

	Name    string
	Vendor  string
	Version struct {
		RuntimeMajor, RuntimeMinor int // OpenCL platform/runtime version
		LangMajor, LangMinor       int // OpenCL C (kernel language) version
	}

	ClockMHz     int64
	GlobalMemory int64 // bytes
	LocalMemory  int64 // bytes
	ComputeUnits int64

	MaxGroups int64
	MaxItems  [3]int64 // per-dimension max work-items in a group

	FloatConfig  FPConfig
	DoubleConfig FPConfig
	HalfConfig   FPConfig // zero iff the device has no fp16 support at all
}

// HasFP16 reports whether a fp16 program should be built for this device,
// per the kernel manager's build-eligibility rule: fp16 iff the device's
// fp-config bitset has the fp16 capability.
func (d *Device) HasFP16() bool { return d.HalfConfig.Has(fpFP16Capability) }

// HasFP64 reports whether a fp64 program should be built for this device:
// fp64 iff the device's fp64-config bitset is non-zero.
func (d *Device) HasFP64() bool { return d.DoubleConfig != 0 }

// LanguageVersion renders the kernel-language version as "major.minor",
// the form the kernel manager injects as -cl-std=CL<major>.<minor>.
func (d *Device) LanguageVersion() string {
	return fmt.Sprintf("%d.%d", d.Version.LangMajor, d.Version.LangMinor)
}

func (d *Device) String() string {
	return fmt.Sprintf("[%d] %s (%s) CL%d.%d/C%d.%d units=%d groups=%d items=%v global=%dMB fp16=%v fp64=%v",
		d.Index, d.Name, d.Vendor,
		d.Version.RuntimeMajor, d.Version.RuntimeMinor,
		d.Version.LangMajor, d.Version.LangMinor,
		d.ComputeUnits, d.MaxGroups, d.MaxItems,
		d.GlobalMemory/(1<<20), d.HasFP16(), d.HasFP64())
}

// maxDevices bounds the device table.
const maxDevices = 32
