// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits x to [-1, 1].
func Clamp(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	default:
		return x
	}
}

// Float32ToPCM converts a sample to a signed integer of bitDepth bits
// (8, 16, 24 or 32), clamping first. Positive full scale maps to the
// largest positive code so that +1 does not wrap.
func Float32ToPCM(x float32, bitDepth int) int {
	full := pcmFullScale(bitDepth)

	return int(float64(Clamp(x)) * full)
}

// PCMToFloat32 converts a signed integer sample of bitDepth bits to
// [-1, 1]. The most negative code maps slightly below -1 and is clamped.
func PCMToFloat32(v int, bitDepth int) float32 {
	return Clamp(float32(float64(v) / pcmFullScale(bitDepth)))
}

func pcmFullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 127
	case 24:
		return 8388607
	case 32:
		return 2147483647
	default:
		return 32767
	}
}
