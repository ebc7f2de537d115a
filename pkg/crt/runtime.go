package crt

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Runtime holds the device table and the underlying runtime binding,
// created by Init and torn down only at process exit (no explicit
// teardown is exposed; the platform binding outlives every context). A
// convenient package-level accessor (Default) is provided for callers
// that don't need more than one Runtime, but the type itself has an
// explicit lifecycle so tests can construct isolated instances.
type Runtime struct {
	Devices []Device

	drv driver
	log *slog.Logger
}

var (
	defaultOnce sync.Once
	defaultRT   *Runtime
	defaultErr  error
)

// Init discovers platforms and their devices, filling the device table
// (bounded to maxDevices). Every call builds a new Runtime and runs
// discovery again; use Default for one shared, once-initialized
// Runtime. Init should be called once at startup, before any Open.
func Init(logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{drv: newDriver(), log: logger}
	devices, err := rt.drv.enumerate()
	if err != nil {
		return nil, wrapError(ErrDeviceNotFound, err, "init")
	}
	if len(devices) > maxDevices {
		devices = devices[:maxDevices]
	}
	rt.Devices = devices
	rt.log.Info("crt initialized", slog.Int("devices", len(devices)))
	return rt, nil
}

// Default returns the process-wide Runtime, performing Init with
// slog.Default() exactly once. Subsequent calls return the same instance
// (or the same error).
func Default() (*Runtime, error) {
	defaultOnce.Do(func() {
		defaultRT, defaultErr = Init(slog.Default())
	})
	return defaultRT, defaultErr
}

// DeviceCount returns the number of devices discovered at Init.
func (rt *Runtime) DeviceCount() int { return len(rt.Devices) }

// DumpDevices writes one descriptive line per discovered device to w.
func (rt *Runtime) DumpDevices(w io.Writer) {
	for i := range rt.Devices {
		fmt.Fprintln(w, rt.Devices[i].String())
	}
}
