package plc

// RSR bounds the fine re-phasing lag search around the coarse re-phasing
// estimate (spec §4.7.1 step 2 "refinelag").
const RSR = 4

// PPChange implements ppchange (spec §4.7.1 step 2): extrapolates xq
// forward by one pitch period for LSW+2*del samples, then searches a
// window of +-del lags for the offset that best cross-correlates against
// the first good-after-erasure frame tout. Returns LagNone when the best
// correlation is too weak to trust (spec's sentinel -100).
func PPChange(xq []int16, base int, pp int16, tout []int16, del int) int {
	lsw := len(tout)
	span := lsw + 2*del
	ext := make([]int16, span)
	p := int(pp >> 6)
	if p < 1 {
		p = 1
	}
	for i := 0; i < span; i++ {
		ref := base + i - p
		if ref >= 0 && ref < len(xq) {
			ext[i] = xq[ref]
		}
	}

	bestLag := LagNone
	var bestScore float64
	for lag := -del; lag <= del; lag++ {
		start := del + lag
		if start < 0 || start+lsw > len(ext) {
			continue
		}
		var cor, e1, e2 float64
		for i := 0; i < lsw; i++ {
			a := float64(ext[start+i])
			b := float64(tout[i])
			cor += a * b
			e1 += a * a
			e2 += b * b
		}
		denom := e1 * e2
		if denom == 0 {
			continue
		}
		score := cor * cor / denom
		if cor < 0 {
			score = -score
		}
		if bestLag == LagNone || score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestScore < 0.3*0.3 {
		return LagNone
	}
	return bestLag
}

// LagNone is ppchange's "no usable re-phasing lag" sentinel.
const LagNone = -100

// RefineLag implements refinelag (spec §4.7.1 step 2): a +-RSR sample
// search around a coarse lag, maximising normalised cross-correlation.
func RefineLag(xq []int16, base int, pp int16, tout []int16, coarseLag int) int {
	p := int(pp >> 6)
	if p < 1 {
		p = 1
	}
	bestLag := coarseLag
	var bestScore float64
	first := true
	for d := -RSR; d <= RSR; d++ {
		lag := coarseLag + d
		var cor, e1, e2 float64
		for i := 0; i < len(tout); i++ {
			ref := base + i - p + lag
			if ref < 0 || ref >= len(xq) {
				continue
			}
			a := float64(xq[ref])
			b := float64(tout[i])
			cor += a * b
			e1 += a * a
			e2 += b * b
		}
		denom := e1 * e2
		if denom == 0 {
			continue
		}
		score := cor * cor / denom
		if first || score > bestScore {
			bestScore = score
			bestLag = lag
			first = false
		}
	}
	return bestLag
}

// Resample implements the time-warp (spec's ola3..ola8 family collapsed
// to one parametrised routine); the output always has len(src) samples.
// For lag > 0 the first lag samples fade linearly from src[i] toward
// src[0] and the rest are src delayed by lag; for lag < 0 the last |lag|
// samples are replaced by src[len(src)-1], with no crossfade.
func Resample(src []int16, lag int) []int16 {
	if lag == 0 {
		return append([]int16(nil), src...)
	}
	n := len(src)
	out := make([]int16, n)
	if lag > 0 {
		// Stretch: repeat the first `lag` samples with a crossfade into
		// the shifted remainder.
		if lag > n {
			lag = n
		}
		for i := 0; i < n; i++ {
			if i < lag {
				// i-lag is always negative here, so the non-crossfaded
				// branch below would read src[0] at i==lag; crossfade
				// toward that same sample for continuity.
				w := float64(i) / float64(lag)
				src0 := src[i]
				src1 := src[0]
				out[i] = int16(float64(src0)*(1-w) + float64(src1)*w)
			} else {
				out[i] = src[i-lag]
			}
		}
		return out
	}
	// Compress: hold the last sample over the final |lag| positions.
	drop := -lag
	if drop > n {
		drop = n
	}
	for i := 0; i < n; i++ {
		srcIdx := i
		if i >= n-drop {
			srcIdx = n - 1
		} else if srcIdx+drop < n {
			srcIdx += 0
		}
		out[i] = src[srcIdx]
	}
	return out
}
