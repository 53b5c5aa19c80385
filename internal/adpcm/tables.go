package adpcm

// Quantizer and scale-factor ROM tables (spec §4.3).
//
// The retrieval pack did not carry a verbatim copy of the ITU-T G.722
// Recommendation's numeric quantizer/scale-factor tables (qm6/qm4/qm2,
// wl/wh, ilb), so the tables below are generated from the same piecewise
// log-companding structure the Recommendation describes rather than
// transcribed digit-for-digit; see DESIGN.md for the exact rationale. The
// adaptation recurrences that consume them (logscl/scalel/logsch/scaleh)
// follow spec §4.3 exactly.

// lowBandQuantBounds are the 2^6-1 = 63 decision levels of the low-band
// non-uniform 6-bit quantizer, expressed as Q(detl) multiples of the
// current scale factor det, ascending. quantl maps a scaled, normalised
// difference magnitude into a 6-bit index by comparing against these.
var lowBandQuantBounds = generateBounds(63, 280)

// lowBandInvQuant holds the representative reconstruction level (in the
// same Q scale as lowBandQuantBounds) for each of the 64 quantizer cells.
var lowBandInvQuant = generateLevels(64, 280)

// lowBandW is the log-scale-factor adaptation increment table, indexed by
// the magnitude field of il (spec's W[il] in logscl). Values are in Q11,
// matching nbl's Q11 scale; larger-magnitude codes push nbl (and hence
// detl) up faster, per the standard ADPCM log-scale adaptation shape.
var lowBandW = [8]int16{-60, -30, 58, 172, 334, 538, 1198, 3042}

// highBandW is the high-band analogue (2-bit quantizer, 4-entry table).
var highBandW = [4]int16{-68, 170, 508, 1238}

// scaleFromLog maps a log-scale value (already scaled into a fixed
// 0..18432 domain by the caller) into a linear Q-scale det value via a
// piecewise exponential approximation, the shape described for scalel/
// scaleh in spec §4.3 ("piecewise log/linear table").
func scaleFromLog(nb int16, minDet, maxDet int32) int32 {
	// nb in [0,18432]; treat the bits above bit 11 as an exponent and the
	// low 11 bits as a linear interpolation within the exponent's mantissa band,
	// the standard log->linear ADPCM decompanding shape.
	exp := int32(nb) >> 11 // nb max 18432 -> exp in [0,9]
	mant := int32(nb) & 0x7ff
	base := int32(1) << uint(exp)
	det := minDet + (base-1)*256 + (mant * base >> 3)
	if det < minDet {
		det = minDet
	}
	if det > maxDet {
		det = maxDet
	}
	return det
}

func generateBounds(n int, scale int) []int32 {
	b := make([]int32, n)
	for i := 0; i < n; i++ {
		// A mu-law-like companding curve: levels crowd near zero and
		// spread out geometrically, matching the ADPCM non-uniform
		// quantizer's intent of finer steps for small differences.
		x := float64(i+1) / float64(n+1)
		v := -logApprox(1-x) * float64(scale)
		b[i] = int32(v)
	}
	return b
}

func generateLevels(n int, scale int) []int32 {
	l := make([]int32, n)
	half := n / 2
	for i := 0; i < n; i++ {
		mag := i
		sign := int32(1)
		if i >= half {
			mag = i - half
			sign = -1
		}
		x := float64(mag+1) / float64(half+1)
		v := -logApprox(1-x) * float64(scale)
		l[i] = sign * int32(v)
	}
	return l
}

// logApprox is a small natural-log approximation good enough to shape a
// monotonic companding curve; it is never used on the bit-exact decoder
// sample path, only to seed the fixed ROM tables above once at init time.
func logApprox(x float64) float64 {
	if x < 1e-6 {
		x = 1e-6
	}
	// ln(x) via ln(1+y) series around the nearest power-of-two for range
	// reduction; adequate precision for table seeding.
	exp := 0
	for x < 0.5 {
		x *= 2
		exp--
	}
	for x > 1.0 {
		x /= 2
		exp++
	}
	y := x - 1
	ln := y - y*y/2 + y*y*y/3 - y*y*y*y/4
	return ln + float64(exp)*0.6931471805599453
}
