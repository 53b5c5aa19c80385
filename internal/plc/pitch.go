package plc

// MaxNPeaks bounds the coarse-pitch peak candidate list (spec's
// MAX_NPEAKS=7).
const MaxNPeaks = 7

// decM1/decM2 bound the decimated-domain lag search window (spec's
// coarsepitch [M1,M2) sliding window, expressed here in the 8:1 decimated
// domain so MinPP/MaxPP at 16 kHz map to M1..M2 after the /8 decimation).
const (
	decM1 = MinPP / 8
	decM2 = MaxPP/8 + 1
)

type peak struct {
	lag    int
	cor    float64
	energy float64
}

// CoarsePitch implements coarsepitch (spec §4.7.3): an incremental
// cor/energy slide over the decimated weighted-speech signal xwd, a
// positive-peak search (retrying with the sign flipped if none are found),
// quadratic interpolation to 1/8-sample resolution, a multi-pitch check
// that prefers the shortest lag whose harmonics also correlate, and a
// last-pitch bias toward cpplast.
func CoarsePitch(xwd []int16, cpplast int16) int16 {
	peaks := findPeaks(xwd, 1)
	if len(peaks) == 0 {
		peaks = findPeaks(xwd, -1)
	}
	if len(peaks) == 0 {
		return cpplast
	}

	best := selectMultiPitch(peaks)
	refined := quadraticRefine(xwd, best)

	// Last-pitch bias (spec step 5): prefer a candidate near cpplast if it
	// is strong relative to the global best.
	lastBiasLag := int(cpplast) / 8
	for _, p := range peaks {
		if abs(p.lag-lastBiasLag) <= 1 && p.cor*p.cor >= 0.7*best.cor*best.cor {
			refined = quadraticRefine(xwd, p)
			break
		}
	}
	return int16(refined * 8)
}

func findPeaks(xwd []int16, sign int) []peak {
	var peaks []peak
	var corBuf, enBuf [decM2 + 1]float64
	for n := decM1; n < decM2 && n < len(xwd); n++ {
		var cor, energy float64
		for i := n; i < len(xwd); i++ {
			cor += float64(xwd[i]) * float64(xwd[i-n]) * float64(sign)
			energy += float64(xwd[i-n]) * float64(xwd[i-n])
		}
		corBuf[n] = cor
		enBuf[n] = energy
	}
	for n := decM1 + 1; n < decM2-1 && n < len(xwd)-1; n++ {
		if corBuf[n] > 0 && corBuf[n] >= corBuf[n-1] && corBuf[n] >= corBuf[n+1] {
			peaks = append(peaks, peak{lag: n, cor: corBuf[n], energy: enBuf[n] + 1})
			if len(peaks) >= MaxNPeaks {
				break
			}
		}
	}
	return peaks
}

// selectMultiPitch implements spec step 4: starting from the shortest
// candidate lag, accept it as the pitch if its harmonics (2L, 3L, ...)
// also show correlation above a decaying threshold; otherwise fall back
// to the single strongest peak by cor^2/energy.
func selectMultiPitch(peaks []peak) peak {
	sorted := append([]peak(nil), peaks...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].lag < sorted[i].lag {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	best := sorted[0]
	bestScore := best.cor * best.cor / best.energy
	for _, p := range sorted {
		score := p.cor * p.cor / p.energy
		if score > bestScore {
			best = p
			bestScore = score
		}
	}
	for _, p := range sorted {
		multiples := decM2 / p.lag
		if multiples < 2 {
			continue
		}
		allPass := true
		for k := 2; k <= multiples && k <= 4; k++ {
			threshold := bestScore * (1 - 0.15*float64(k))
			if threshold < 0 {
				threshold = 0
			}
			found := false
			for _, q := range sorted {
				if abs(q.lag-p.lag*k) <= 1 && q.cor*q.cor/q.energy >= threshold {
					found = true
					break
				}
			}
			if !found {
				allPass = false
				break
			}
		}
		if allPass {
			return p
		}
	}
	return best
}

func quadraticRefine(xwd []int16, p peak) float64 {
	lag := float64(p.lag)
	// Parabolic interpolation around the integer-lag peak using the
	// neighbouring two correlation samples recomputed locally (HDECF
	// points in spec terms); a light local search is enough since the
	// caller already picked the coarse integer lag.
	c0 := correlationAt(xwd, p.lag-1)
	c1 := p.cor
	c2 := correlationAt(xwd, p.lag+1)
	denom := c0 - 2*c1 + c2
	if denom == 0 {
		return lag
	}
	delta := 0.5 * (c0 - c2) / denom
	if delta > 1 {
		delta = 1
	}
	if delta < -1 {
		delta = -1
	}
	return lag + delta
}

func correlationAt(xwd []int16, lag int) float64 {
	if lag < 1 || lag >= len(xwd) {
		return 0
	}
	var cor float64
	for i := lag; i < len(xwd); i++ {
		cor += float64(xwd[i]) * float64(xwd[i-lag])
	}
	return cor
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Prfn implements prfn (spec §4.7.3): sample-resolution pitch refinement
// around cpp over [MinPP,MaxPP], maximising cor^2/energy, and derives
// ptfe, the Q14 pitch tap clipped to [-1,1].
func Prfn(xq []int16, base int, cpp int16) (pp int16, ptfe int16) {
	center := int(cpp)
	if center < MinPP {
		center = MinPP
	}
	if center > MaxPP {
		center = MaxPP
	}
	lo := center - 4
	hi := center + 4
	if lo < MinPP {
		lo = MinPP
	}
	if hi > MaxPP {
		hi = MaxPP
	}
	bestLag := center
	var bestScore, bestCor float64
	bestEnergy := 1.0
	for lag := lo; lag <= hi; lag++ {
		var cor, energy float64
		for i := 0; i < FrameSize; i++ {
			idx := base + i
			ref := base + i - lag
			if idx < 0 || idx >= len(xq) || ref < 0 || ref >= len(xq) {
				continue
			}
			cor += float64(xq[idx]) * float64(xq[ref])
			energy += float64(xq[ref]) * float64(xq[ref])
		}
		energy += 1
		score := cor * cor / energy
		if score > bestScore {
			bestScore = score
			bestCor = cor
			bestEnergy = energy
			bestLag = lag
		}
	}
	tap := bestCor / bestEnergy
	if tap > 1 {
		tap = 1
	}
	if tap < -1 {
		tap = -1
	}
	return int16(bestLag << 6), int16(tap * 16384)
}
