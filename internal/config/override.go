package config

import "github.com/Amr-9/goblast/pkg/crt"

// ToOverride builds a crt.Override from p, enabling profiling-sample
// collection iff p.Enabled.
func (p ProfilingConfig) ToOverride() *crt.Override {
	o := &crt.Override{
		MaxGroups:        p.MaxGroups,
		MaxItemsPerGroup: p.MaxItemsPerGroup,
		SampleCap:        p.SampleCap,
	}
	if p.Enabled {
		o.Samples = make([]crt.ProfileSample, 0, p.SampleCap)
	}
	return o
}
