// Package fp16 is the fp16<->fp32 codec the reduction engine consumes
// rather than implements. It wraps github.com/x448/float16 with the
// bit-level accessors needed to read a scalar result straight out of a
// mapped device buffer.
package fp16

import (
	"math"

	"github.com/x448/float16"
)

// ToFloat32 widens a raw fp16 bit pattern to float32.
func ToFloat32(bits uint16) float32 {
	return float16.Frombits(bits).Float32()
}

// FromFloat32 narrows f to the nearest representable fp16 bit pattern.
func FromFloat32(f float32) uint16 {
	return uint16(float16.Fromfloat32(f))
}

// IsNaN reports whether bits encodes a NaN.
func IsNaN(bits uint16) bool { return float16.Frombits(bits).IsNaN() }

// IsInf reports whether bits encodes positive or negative infinity.
func IsInf(bits uint16) bool { return float16.Frombits(bits).IsInf(0) }

// Float32FromBits reinterprets bits as an IEEE-754 float32, the
// complement to fp16's ToFloat32 used when the reduction engine's
// scalar readback is already fp32 (no narrowing codec involved).
func Float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }

// Float64FromBits reinterprets bits as an IEEE-754 float64.
func Float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
