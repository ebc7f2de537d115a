package crt

import (
	"strings"
	"testing"
)

func oneDevice() Device {
	d := Device{Index: 0, Name: "fake", MaxGroups: 16, MaxItems: [3]int64{256, 256, 256}}
	d.FloatConfig = FPDenorm | FPInfNaN
	d.DoubleConfig = FPDenorm | FPInfNaN
	return d
}

func TestOpenCloseNoOutstanding(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ctx.Outstanding() != 0 {
		t.Fatalf("Outstanding() = %d, want 0", ctx.Outstanding())
	}
	ctx.Close()
}

func TestOpenInvalidDeviceIndex(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	if _, err := rt.Open(1, nil); err == nil {
		t.Fatal("expected error for out-of-range device index")
	}
}

func TestAllocateDeallocateTracksOutstanding(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()

	buf, err := ctx.Allocate(AccessReadWrite, 64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if ctx.Outstanding() != 1 {
		t.Fatalf("Outstanding() = %d, want 1", ctx.Outstanding())
	}
	ctx.Deallocate(buf)
	if ctx.Outstanding() != 0 {
		t.Fatalf("Outstanding() = %d, want 0 after Deallocate", ctx.Outstanding())
	}
}

func TestCloseWithOutstandingBufferPanics(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := ctx.Allocate(AccessReadWrite, 32); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected Close to panic with an outstanding buffer")
		}
	}()
	ctx.Close()
}

func TestAllocateRejectsNonPositiveSize(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()
	if _, err := ctx.Allocate(AccessReadWrite, 0); err == nil {
		t.Fatal("expected error allocating 0 bytes")
	}
}

func TestMapUnmapRoundTrip(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()

	buf, err := ctx.Allocate(AccessReadWrite, 16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(buf)

	m, err := ctx.Map(MapWriteInvalidate, buf, 0, 16)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	bytes := m.Bytes(16)
	bytes[0] = 0xAB
	if err := ctx.Unmap(m); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
}

func TestMapRejectsOutOfBoundsRange(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()

	buf, err := ctx.Allocate(AccessReadWrite, 16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer ctx.Deallocate(buf)

	if _, err := ctx.Map(MapRead, buf, 8, 16); err == nil {
		t.Fatal("expected error mapping past buffer end")
	}
}

func TestAppendSampleRespectsCap(t *testing.T) {
	o := &Override{Samples: []ProfileSample{}, SampleCap: 2}
	o.AppendSample(ProfileSample{Op: "dot"})
	o.AppendSample(ProfileSample{Op: "dot"})
	o.AppendSample(ProfileSample{Op: "dot"})
	if len(o.Samples) != 2 {
		t.Fatalf("len(Samples) = %d, want 2 (capped)", len(o.Samples))
	}
}

func TestCompileCreateReleaseKernel(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	ctx, err := rt.Open(0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ctx.Close()

	prog, err := ctx.Compile([]byte("kernel void noop() {}"), "-D fp_t=float")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	k, err := prog.CreateKernel("noop")
	if err != nil {
		t.Fatalf("CreateKernel: %v", err)
	}
	if k.Name() != "noop" {
		t.Fatalf("Name() = %q, want %q", k.Name(), "noop")
	}
	if ctx.Outstanding() != 2 {
		t.Fatalf("Outstanding() = %d, want 2 (program + kernel)", ctx.Outstanding())
	}
	ctx.ReleaseKernel(k)
	ctx.ReleaseProgram(prog)
	if ctx.Outstanding() != 0 {
		t.Fatalf("Outstanding() = %d, want 0", ctx.Outstanding())
	}
}

func TestDumpDevicesOneLinePerDevice(t *testing.T) {
	rt := newFakeRuntime([]Device{oneDevice()})
	var b strings.Builder
	rt.DumpDevices(&b)
	out := b.String()
	if !strings.Contains(out, "fake") {
		t.Fatalf("DumpDevices output missing device name: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("DumpDevices should write one line per device, got %q", out)
	}
}

func TestAppendSampleNoopWhenProfilingDisabled(t *testing.T) {
	o := &Override{}
	o.AppendSample(ProfileSample{Op: "dot"})
	if o.Samples != nil {
		t.Fatal("Samples should stay nil when profiling is disabled")
	}
}
