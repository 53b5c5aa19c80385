// Package dsp provides the saturating fixed-point primitives the whole codec
// is expressed in (spec §4.1). The G.722 core (adpcm, qmf) is built from
// these operators only; the bandwidth-extension (bwe) and concealment (plc)
// packages and the AVQ coefficient interface also compute in float64.
//
// The primitive names and saturation semantics follow the Q-format fixed
// point conventions used throughout the ITU-T G.72x family, and the style
// (small top-level functions, no hidden global state) is carried over from
// the teacher's internal/silk/libopus_fixed.go.
package dsp

const (
	minW16 int32 = -32768
	maxW16 int32 = 32767
	minW32 int64 = -2147483648
	maxW32 int64 = 2147483647
)

// W16 and W32 document intent at call sites; both are plain Go integers so
// arithmetic composes without conversion noise, but every operator below
// enforces the saturation contract explicitly.
type W16 = int16
type W32 = int32

func sat16(x int32) int16 {
	if x > maxW16 {
		return int16(maxW16)
	}
	if x < minW16 {
		return int16(minW16)
	}
	return int16(x)
}

func sat32(x int64) int32 {
	if x > maxW32 {
		return int32(maxW32)
	}
	if x < minW32 {
		return int32(minW32)
	}
	return int32(x)
}

// Add16 returns sat16(a+b).
func Add16(a, b int16) int16 { return sat16(int32(a) + int32(b)) }

// Sub16 returns sat16(a-b).
func Sub16(a, b int16) int16 { return sat16(int32(a) - int32(b)) }

// Mult returns sat16((a*b) >> 15), the standard Q15 fractional multiply.
func Mult(a, b int16) int16 { return sat16(int32(int32(a) * int32(b) >> 15)) }

// MultR rounds before the shift: sat16(((a*b) + 0x4000) >> 15).
func MultR(a, b int16) int16 {
	p := int32(a)*int32(b) + 0x4000
	return sat16(p >> 15)
}

// Shl16 performs a saturating left shift of a W16 by shift bits (shift >= 0).
func Shl16(a int16, shift int) int16 {
	if shift < 0 {
		return Shr16(a, -shift)
	}
	v := int64(a) << uint(shift)
	if v > int64(maxW16) {
		return int16(maxW16)
	}
	if v < int64(minW16) {
		return int16(minW16)
	}
	return int16(v)
}

// Shr16 performs an arithmetic right shift of a W16 by shift bits (shift >= 0).
func Shr16(a int16, shift int) int16 {
	if shift < 0 {
		return Shl16(a, -shift)
	}
	if shift >= 31 {
		if a < 0 {
			return -1
		}
		return 0
	}
	return int16(int32(a) >> uint(shift))
}

// LAdd returns sat32(a+b).
func LAdd(a, b int32) int32 { return sat32(int64(a) + int64(b)) }

// LSub returns sat32(a-b).
func LSub(a, b int32) int32 { return sat32(int64(a) - int64(b)) }

// LShl performs a saturating left shift of a W32.
func LShl(a int32, shift int) int32 {
	if shift < 0 {
		return LShr(a, -shift)
	}
	v := int64(a) << uint(shift)
	return sat32(v)
}

// LShr performs an arithmetic right shift of a W32.
func LShr(a int32, shift int) int32 {
	if shift < 0 {
		return LShl(a, -shift)
	}
	if shift >= 31 {
		if a < 0 {
			return -1
		}
		return 0
	}
	return a >> uint(shift)
}

// LMult returns sat32(2*a*b), the canonical 16x16->32 doubling multiply.
func LMult(a, b int16) int32 { return sat32(2 * int64(a) * int64(b)) }

// LMult0 omits the doubling: sat32(a*b).
func LMult0(a, b int16) int32 { return sat32(int64(a) * int64(b)) }

// LMac returns sat32(acc + 2*a*b).
func LMac(acc int32, a, b int16) int32 { return sat32(int64(acc) + 2*int64(a)*int64(b)) }

// LMac0 returns sat32(acc + a*b).
func LMac0(acc int32, a, b int16) int32 { return sat32(int64(acc) + int64(a)*int64(b)) }

// LMsu returns sat32(acc - 2*a*b).
func LMsu(acc int32, a, b int16) int32 { return sat32(int64(acc) - 2*int64(a)*int64(b)) }

// LMsu0 returns sat32(acc - a*b).
func LMsu0(acc int32, a, b int16) int32 { return sat32(int64(acc) - int64(a)*int64(b)) }

// NormL returns the left-shift count that normalises x into
// [0x40000000, 0x7fffffff] (or the mirrored negative range); 0 for x==0.
func NormL(x int32) int {
	if x == 0 {
		return 0
	}
	v := x
	if v == -1 {
		return 31
	}
	if v < 0 {
		v = ^v
	}
	n := 0
	for v < 0x40000000 {
		v <<= 1
		n++
	}
	return n
}

// NormS is the 16-bit analogue of NormL.
func NormS(x int16) int {
	if x == 0 {
		return 0
	}
	if x == -1 {
		return 15
	}
	v := int32(x)
	if v < 0 {
		v = ^v
	}
	n := 0
	for v < 0x4000 {
		v <<= 1
		n++
	}
	return n
}

// Round returns sat16((x + 0x8000) >> 16).
func Round(x int32) int16 {
	return sat16(int32((int64(x) + 0x8000) >> 16))
}

// ExtractH returns the high 16 bits of a W32.
func ExtractH(x int32) int16 { return int16(x >> 16) }

// ExtractL returns the low 16 bits of a W32.
func ExtractL(x int32) int16 { return int16(x) }

// L_deposit_h / L_deposit_l are the inverses of Extract{H,L}.
func LDepositH(x int16) int32 { return int32(x) << 16 }
func LDepositL(x int16) int32 { return int32(x) }

// Abs16 returns the saturating absolute value of a W16 (abs(-32768) = 32767).
func Abs16(x int16) int16 {
	if x == int16(minW16) {
		return int16(maxW16)
	}
	if x < 0 {
		return -x
	}
	return x
}

// LAbs is the W32 analogue of Abs16.
func LAbs(x int32) int32 {
	if x == int32(minW32) {
		return int32(maxW32)
	}
	if x < 0 {
		return -x
	}
	return x
}

// DivS computes sat16(num<<15 / den) for 0 <= num <= den, den > 0.
func DivS(num, den int16) int16 {
	if den == 0 {
		return int16(maxW16)
	}
	v := (int64(num) << 15) / int64(den)
	return sat16(int32(v))
}

// Mpy32 computes a saturated 32x32->32 multiply from 16-bit high/low halves,
// via three 16x16 partials: (ah.al) * (bh.bl) truncated back to Q31.
func Mpy32(ah, al, bh, bl int16) int32 {
	var acc int32
	acc = LMult(ah, bh)
	acc = LAdd(acc, LShl(extractProd(ah, bl), 1))
	acc = LAdd(acc, LShl(extractProd(al, bh), 1))
	return acc
}

func extractProd(a, b int16) int32 {
	p := int64(a) * int64(b)
	return sat32(p >> 15)
}

// Clamp16 clips x into [lo, hi] without saturation arithmetic semantics;
// used for invariant enforcement (predictor coefficient limits) rather than
// arithmetic overflow handling.
func Clamp16(x, lo, hi int16) int16 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ClampL clips x into [lo, hi] for W32 values.
func ClampL(x, lo, hi int32) int32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// MinS / MaxS are small saturation-free helpers used throughout the PLC and
// BWE search loops.
func MinS(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func MaxS(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

func MinL(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func MaxL(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
