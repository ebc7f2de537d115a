// Command blastbench lists the discovered devices, runs a fixed set of
// correctness scenarios against one of them (identity and strided dot
// products, chunk-boundary straddling, fp64 accumulation, and the
// unsupported-precision and foreign-buffer error paths), and reports
// pass/fail plus the profiling EMA when enabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Amr-9/goblast/internal/config"
	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/profile"
)

func main() {
	deviceIndex := flag.Int("device", -1, "device index to open (overrides config's device_index when >= 0)")
	configPath := flag.String("config", "", "path to a YAML config file (internal/config.Config); omit to run with defaults")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.ParseFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "blastbench: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *deviceIndex >= 0 {
		cfg.DeviceIndex = *deviceIndex
	}

	rt, err := crt.Init(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blastbench: %v\n", err)
		os.Exit(1)
	}
	if rt.DeviceCount() == 0 {
		fmt.Fprintln(os.Stderr, "blastbench: no devices found")
		os.Exit(1)
	}
	rt.DumpDevices(os.Stdout)

	override := cfg.Profiling.ToOverride()
	passed, failed := runScenarios(rt, cfg.DeviceIndex, override, cfg.BuildOptions, logger)
	fmt.Printf("\n%d passed, %d failed\n", passed, failed)

	if cfg.Profiling.Enabled {
		reportProfile(cfg, override, logger)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// reportProfile drains override's collected samples through a real
// OpenTelemetry meter (so goblast.kernel.seconds/gflops actually reach
// an exporter, not just the in-process EMA) and prints the resulting
// smoothed throughput.
func reportProfile(cfg *config.Config, override *crt.Override, logger *slog.Logger) {
	provider := sdkmetric.NewMeterProvider()
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("blastbench: otel meter provider shutdown", slog.Any("error", err))
		}
	}()

	exporter, err := profile.NewOTelExporter(provider.Meter("github.com/Amr-9/goblast/cmd/blastbench"))
	if err != nil {
		logger.Warn("blastbench: otel exporter setup failed", slog.Any("error", err))
		return
	}
	collector := profile.NewCollector(cfg.Profiling.EMAWindow).WithOTel(exporter)
	n := profile.Drain(collector, override.Samples)
	seconds, gflops, count := collector.EMA()
	fmt.Printf("profiling: %d samples drained, EMA %.3fus %.3f Gflops over %d observations\n",
		n, seconds*1e6, gflops, count)
}
