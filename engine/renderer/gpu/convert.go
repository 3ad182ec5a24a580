package gpu

import (
	"math"

	kmath "github.com/spaghettifunk/meshdraw/engine/math"
)

const (
	signedInt10Max = 511
	signedInt10Min = -512
	// Extremes of the 2-bit signed w component.
	signedInt2Max = 1
	signedInt2Min = -2
)

// PackedNormal is a 10-10-10-2 signed normalized vector. X, Y and Z hold
// 10-bit values, W a 2-bit value.
type PackedNormal struct {
	X, Y, Z int16
	W       int8
}

// Short4 is a 16-bit signed normalized 4-component vector.
type Short4 [4]int16

func normalizedToI10(x float32) int16 {
	return int16(kmath.Clamp(int32(x*signedInt10Max), signedInt10Min, signedInt10Max))
}

func normalizedToI16(x float32) int16 {
	return int16(kmath.Clamp(int32(x*math.MaxInt16), math.MinInt16, math.MaxInt16))
}

// ConvertNormalPacked quantizes xyz of a unit vector to 10 bits per axis and
// stores the sign of v[3] in W as the extreme 2-bit values (1 or -2).
func ConvertNormalPacked(v [4]float32) PackedNormal {
	p := PackedNormal{
		X: normalizedToI10(v[0]),
		Y: normalizedToI10(v[1]),
		Z: normalizedToI10(v[2]),
		W: signedInt2Min,
	}
	if v[3] > 0.0 {
		p.W = signedInt2Max
	}
	return p
}

// ConvertNormalShort4 quantizes xyz of a unit vector to 16 bits per axis and
// stores the sign of v[3] in the last component as MaxInt16 or MinInt16.
func ConvertNormalShort4(v [4]float32) Short4 {
	s := Short4{
		normalizedToI16(v[0]),
		normalizedToI16(v[1]),
		normalizedToI16(v[2]),
		math.MinInt16,
	}
	if v[3] > 0.0 {
		s[3] = math.MaxInt16
	}
	return s
}

// SignedFloat4 copies xyz and folds the sign of v[3] into ±1.
func SignedFloat4(v [4]float32) [4]float32 {
	out := v
	out[3] = -1.0
	if v[3] > 0.0 {
		out[3] = 1.0
	}
	return out
}

// Pack returns the 32-bit word: X in bits 0-9, Y in 10-19, Z in 20-29, W in 30-31.
func (p PackedNormal) Pack() uint32 {
	return uint32(p.X)&0x3ff |
		(uint32(p.Y)&0x3ff)<<10 |
		(uint32(p.Z)&0x3ff)<<20 |
		(uint32(p.W)&0x3)<<30
}

// UnpackNormal sign-extends the components of a packed 10-10-10-2 word.
func UnpackNormal(word uint32) PackedNormal {
	return PackedNormal{
		X: int16(int32(word<<22) >> 22),
		Y: int16(int32(word<<12) >> 22),
		Z: int16(int32(word<<2) >> 22),
		W: int8(int32(word) >> 30),
	}
}

// Float4 converts back to floats; W becomes the sign (+1 or -1).
func (p PackedNormal) Float4() [4]float32 {
	w := float32(-1.0)
	if p.W > 0 {
		w = 1.0
	}
	return [4]float32{
		float32(p.X) / signedInt10Max,
		float32(p.Y) / signedInt10Max,
		float32(p.Z) / signedInt10Max,
		w,
	}
}

// Float4 converts back to floats; the last component becomes the sign (+1 or -1).
func (s Short4) Float4() [4]float32 {
	w := float32(-1.0)
	if s[3] > 0 {
		w = 1.0
	}
	return [4]float32{
		float32(s[0]) / math.MaxInt16,
		float32(s[1]) / math.MaxInt16,
		float32(s[2]) / math.MaxInt16,
		w,
	}
}
