package bwe

import "math"

// rngState is a small deterministic PRNG (xorshift32) used for the
// noise-fill excitation the decoder must synthesise in NORMAL/TRANSIENT
// mode (the SWB-0 payload carries an envelope, not the original residual).
// It is seeded deterministically from frame content only, so two decoders
// fed the same payload produce byte-identical output (spec §5 ordering
// guarantee).
type rngState struct{ s uint32 }

func (r *rngState) next() float64 {
	r.s ^= r.s << 13
	r.s ^= r.s >> 17
	r.s ^= r.s << 5
	return (float64(r.s) / float64(1<<32))*2 - 1
}

// DecodeFreqCoef implements bwe_dec_freqcoef (spec §4.5): parse the
// payload's envelope/gain/mode, synthesise or accept AVQ-refined MDCT
// coefficients, and return them with their Q exponent (scoef_SWB,
// scoef_SWBQ). avqRefined, when non-nil, overwrites the corresponding
// bins with AVQ stage output (R2sm/R3sm, good frame).
func (s *State) DecodeFreqCoef(p Payload, avqRefined []float64, goodFrame bool) ([]float64, int) {
	gainLog := dequantize(p.GainIdx, 1.0)
	gain := math.Pow(2, gainLog)

	coef := make([]float64, MDCTLen/2)
	if !goodFrame {
		// Packet loss: synthesise coefficients from the previous frame
		// with attenuation (spec §4.5 "During packet loss...").
		bandLen := len(coef) / SWBNormalFenv
		rng := &rngState{s: 0x9e3779b9}
		for b := 0; b < SWBNormalFenv; b++ {
			level := math.Pow(2, dequantize(s.PrevFenv[b], fenvQuantStep)) * 0.7
			start := b * bandLen
			end := start + bandLen
			if end > len(coef) {
				end = len(coef)
			}
			for i := start; i < end; i++ {
				coef[i] = rng.next() * math.Sqrt(level)
			}
		}
		s.PrevFenv = p.FenvIdx
		return coef, int(math.Round(gainLog))
	}

	bandLen := len(coef) / SWBNormalFenv
	rng := &rngState{s: deterministicSeed(p)}
	for b := 0; b < SWBNormalFenv; b++ {
		level := math.Pow(2, dequantize(p.FenvIdx[b], fenvQuantStep))
		start := b * bandLen
		end := start + bandLen
		if end > len(coef) {
			end = len(coef)
		}
		for i := start; i < end; i++ {
			switch p.CodMode {
			case ModeHarmonic:
				// Harmonic excitation: a slowly varying pseudo-tonal
				// pattern rather than independent noise per bin.
				coef[i] = math.Sin(float64(i)*0.7) * math.Sqrt(level)
			default:
				coef[i] = rng.next() * math.Sqrt(level)
			}
		}
	}

	if avqRefined != nil {
		n := len(avqRefined)
		if n > len(coef) {
			n = len(coef)
		}
		copy(coef[:n], avqRefined[:n])
	}

	for i := range coef {
		coef[i] *= gain
	}

	s.PrevMode = p.CodMode
	s.PrevTenv = p.TenvIdx
	s.PrevFenv = p.FenvIdx
	return coef, int(math.Round(gainLog))
}

// DecodeTimePos implements bwe_dec_timepos (spec §4.5): inverse MDCT,
// overlap-add against the stored tail, temporal-envelope re-application,
// and the transient-position adjustment when TModifyFlag is set.
func (s *State) DecodeTimePos(coef []float64, p Payload) []float64 {
	timeDomain := imdct(coef)
	for i, w := range s.Window {
		timeDomain[i] *= w
		timeDomain[len(timeDomain)-1-i] *= w
	}

	out := make([]float64, MDCTLen/2)
	for i := 0; i < MDCTLen/2; i++ {
		out[i] = timeDomain[i] + s.Overlap[i]
	}
	copy(s.Overlap, timeDomain[MDCTLen/2:])

	applyTemporalEnvelope(out, p.TenvIdx, s.TModifyFlag)
	return out
}

// applyTemporalEnvelope re-shapes the flat-gain MDCT output with the
// transmitted per-subsegment envelope, which is what lets a coarse 3-bit
// temporal resolution still track sharp attacks (spec's temporal envelope
// re-application, step 4 of the decoder path).
func applyTemporalEnvelope(out []float64, tenvIdx [SWBTEnv]int, modify bool) {
	segLen := len(out) / SWBTEnv
	for seg := 0; seg < SWBTEnv; seg++ {
		target := math.Pow(2, dequantize(tenvIdx[seg], tenvQuantStep))
		start := seg * segLen
		end := start + segLen
		if end > len(out) {
			end = len(out)
		}
		var energy float64
		for i := start; i < end; i++ {
			energy += out[i] * out[i]
		}
		rms := math.Sqrt(energy / float64(end-start+1))
		if rms < 1e-9 {
			continue
		}
		scale := math.Sqrt(target) / rms
		shift := 0
		if modify {
			// Transient-position adjustment: bias the gain application
			// slightly toward the segment's tail, where the true attack
			// in the original signal is more likely to have sat.
			shift = (end - start) / 4
		}
		for i := start; i < end; i++ {
			idx := i
			if shift > 0 && idx+shift < end {
				idx += shift
			}
			out[idx] *= scale
		}
	}
}

func deterministicSeed(p Payload) uint32 {
	seed := uint32(0x2545f491)
	for _, v := range p.FenvIdx {
		seed = seed*1664525 + uint32(v) + 1013904223
	}
	seed += uint32(p.GainIdx) * 2654435761
	if seed == 0 {
		seed = 1
	}
	return seed
}
