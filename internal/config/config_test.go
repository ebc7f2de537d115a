package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`device_index: 2`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DeviceIndex != 2 {
		t.Errorf("DeviceIndex = %d, want 2", cfg.DeviceIndex)
	}
	if cfg.Profiling.EMAWindow != DefaultEMAWindow {
		t.Errorf("EMAWindow default = %d, want %d", cfg.Profiling.EMAWindow, DefaultEMAWindow)
	}
	if cfg.Profiling.SampleCap != 1024 {
		t.Errorf("SampleCap default = %d, want 1024", cfg.Profiling.SampleCap)
	}
}

func TestParseFullDocument(t *testing.T) {
	data := []byte(`
device_index: 0
profiling:
  enabled: true
  max_groups: 4
  max_items_per_group: 64
  sample_cap: 512
  ema_window: 32
build_options:
  fp16_surrogate: "1"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Profiling.Enabled {
		t.Error("Enabled = false, want true")
	}
	if cfg.Profiling.MaxGroups != 4 || cfg.Profiling.MaxItemsPerGroup != 64 {
		t.Errorf("unexpected tile override: %+v", cfg.Profiling)
	}
	if cfg.Profiling.SampleCap != 512 || cfg.Profiling.EMAWindow != 32 {
		t.Errorf("unexpected profiling knobs: %+v", cfg.Profiling)
	}
	if cfg.BuildOptions["fp16_surrogate"] != "1" {
		t.Errorf("BuildOptions[fp16_surrogate] = %q, want \"1\"", cfg.BuildOptions["fp16_surrogate"])
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte("bogus_field: true\n")); err == nil {
		t.Fatal("expected error decoding an unknown top-level field")
	}
}

func TestParseRejectsNegativeFields(t *testing.T) {
	cases := []string{
		"device_index: -1\n",
		"profiling:\n  max_groups: -1\n",
		"profiling:\n  max_items_per_group: -1\n",
		"profiling:\n  sample_cap: -1\n",
		"profiling:\n  ema_window: -1\n",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Errorf("expected validation error for %q", c)
		}
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		DeviceIndex: -1,
		Profiling: ProfilingConfig{
			MaxGroups:        -1,
			MaxItemsPerGroup: -1,
			SampleCap:        -1,
			EMAWindow:        -1,
		},
	}
	errs := Validate(cfg)
	if len(errs) != 5 {
		t.Fatalf("Validate returned %d errors, want 5: %v", len(errs), errs)
	}
}

func TestDefaultAppliesDefaultsWithoutAFile(t *testing.T) {
	cfg := Default()
	if cfg.DeviceIndex != 0 {
		t.Errorf("DeviceIndex = %d, want 0", cfg.DeviceIndex)
	}
	if cfg.Profiling.EMAWindow != DefaultEMAWindow {
		t.Errorf("EMAWindow default = %d, want %d", cfg.Profiling.EMAWindow, DefaultEMAWindow)
	}
	if cfg.Profiling.SampleCap != 1024 {
		t.Errorf("SampleCap default = %d, want 1024", cfg.Profiling.SampleCap)
	}
	if cfg.Profiling.Enabled {
		t.Error("Enabled = true, want false (profiling off by default)")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("/nonexistent/path/goblast.yaml"); err == nil {
		t.Fatal("expected error reading a nonexistent config file")
	}
}
