// Package kernelmgr compiles the embedded kernel bundle once per
// supported precision and indexes the resulting kernels by
// (operation, precision, addressing mode).
package kernelmgr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Amr-9/goblast/pkg/crt"
	"github.com/Amr-9/goblast/pkg/precision"
)

// buildOptions renders the -D macro list for precision p against
// device d: the fixed type aliases, the device's kernel-language
// version, the precision's scalar/vector aliases, and, for every fp16
// build, the fp16_surrogate macro. extra holds
// caller-supplied macro overrides (internal/config.Config.BuildOptions)
// for devices whose advertised capabilities need a manual correction;
// they are appended last, in sorted key order, so they take effect
// after (and can override, via -D redefinition) the computed defaults.
func buildOptions(d *crt.Device, p precision.Tag, extra map[string]string) string {
	var b strings.Builder
	b.WriteString("-D fp16_t=half -D fp32_t=float -D fp64_t=double ")
	b.WriteString("-D int32_t=int -D int64_t=long ")
	fmt.Fprintf(&b, "-cl-std=CL%s ", d.LanguageVersion())
	ctype := precision.CTypeNames[p]
	suffix := precision.Suffixes[p]
	fmt.Fprintf(&b, "-D fp_t=%s -D vec4=%s4 -D vec8=%s8 -D vec16=%s16 -D suffix=%s ",
		ctype, ctype, ctype, ctype, suffix)
	if p == precision.FP16 {
		// The device descriptor only records whether cl_khr_fp16 is
		// advertised, not whether the compiler genuinely treats "half"
		// as an arithmetic type; the surrogate macro promotes kernel
		// math to fp32 unconditionally and narrows only at the store,
		// which is correct either way. See kernels/blast.cl.
		b.WriteString("-D fp16_surrogate ")
	}
	if len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "-D %s=%s ", k, extra[k])
		}
	}
	return strings.TrimSpace(b.String())
}
