//go:build !opencl

package main

import (
	"fmt"
	"log/slog"

	"github.com/Amr-9/goblast/pkg/crt"
)

func runScenarios(rt *crt.Runtime, deviceIndex int, override *crt.Override, buildOptions map[string]string, log *slog.Logger) (passed, failed int) {
	_ = override
	_ = buildOptions
	_ = log
	fmt.Println("blastbench: built without -tags opencl; no scenarios can run")
	return 0, 1
}
