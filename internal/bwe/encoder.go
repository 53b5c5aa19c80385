package bwe

import "math"

// Encode runs the SWB BWE encoder path (spec §4.5 bwe_enc) on one 5 ms,
// 80-sample 16 kHz high-band block. It returns the bitstream payload plus
// the quantised MDCT coefficients (scoef) so the caller can feed the AVQ
// stage-1/stage-2 enhancement encoders on the same residual (spec §4.6).
func (s *State) Encode(highBand []float64) (Payload, []float64, int) {
	tenv, transi := s.calcTEnv(highBand)
	mode := s.classify(tenv, transi)

	windowed := make([]float64, MDCTLen)
	copy(windowed, highBand)
	for i, w := range s.Window {
		windowed[i] *= w
	}
	coef := mdct(windowed)

	fenvRaw := frequencyEnvelope(coef)
	gainRaw := globalGain(coef)

	var payload Payload
	payload.CodMode = mode
	for i, v := range tenv {
		payload.TenvIdx[i] = quantize(v, tenvQuantStep, tenvLevels)
	}
	for i, v := range fenvRaw {
		payload.FenvIdx[i] = quantize(v, fenvQuantStep, fenvLevels)
	}
	payload.GainIdx = quantize(gainRaw, 1.0, gainLevels)
	payload.WBEnhFlag = mode != ModeTransient

	quantizedGain := dequantize(payload.GainIdx, 1.0)
	scoefQ, exp := quantizeCoefficients(coef, quantizedGain)

	s.PrevMode = mode
	s.PrevTenv = payload.TenvIdx
	s.PrevFenv = payload.FenvIdx
	s.TModifyFlag = transi && mode == ModeTransient

	return payload, scoefQ, exp
}

// calcTEnv implements Icalc_tEnv: per-SWBTEnv-subsegment log-energy of the
// high-band signal, plus a transient flag comparing adjacent subsegment
// energies (spec §4.5 step 1).
func (s *State) calcTEnv(highBand []float64) ([SWBTEnv]float64, bool) {
	var tenv [SWBTEnv]float64
	segLen := len(highBand) / SWBTEnv
	for seg := 0; seg < SWBTEnv; seg++ {
		var energy float64
		start := seg * segLen
		end := start + segLen
		if end > len(highBand) {
			end = len(highBand)
		}
		for i := start; i < end; i++ {
			energy += highBand[i] * highBand[i]
		}
		tenv[seg] = 0.5 * math.Log2(energy+1e-9)
	}
	transi := false
	for i := 1; i < SWBTEnv; i++ {
		if tenv[i]-tenv[i-1] > 3.0 || tenv[i-1]-tenv[i] > 3.0 {
			transi = true
		}
	}
	return tenv, transi
}

// classify implements the mode decision of spec §4.5 step 2: NORMAL,
// HARMONIC, or TRANSIENT, using the temporal envelope shape and the
// encoder's own previous mode. A transient frame is classed TRANSIENT at
// once; a frame right after a TRANSIENT one is never classed HARMONIC.
func (s *State) classify(tenv [SWBTEnv]float64, transi bool) CodMode {
	if transi {
		return ModeTransient
	}
	var mean, variance float64
	for _, v := range tenv {
		mean += v
	}
	mean /= SWBTEnv
	for _, v := range tenv {
		variance += (v - mean) * (v - mean)
	}
	variance /= SWBTEnv
	if variance < 0.5 && s.PrevMode != ModeTransient {
		return ModeHarmonic
	}
	return ModeNormal
}

func frequencyEnvelope(coef []float64) [SWBNormalFenv]float64 {
	var fenv [SWBNormalFenv]float64
	bandLen := len(coef) / SWBNormalFenv
	for b := 0; b < SWBNormalFenv; b++ {
		var e float64
		start := b * bandLen
		end := start + bandLen
		if end > len(coef) {
			end = len(coef)
		}
		for i := start; i < end; i++ {
			e += coef[i] * coef[i]
		}
		fenv[b] = 0.5 * math.Log2(e+1e-9)
	}
	return fenv
}

func globalGain(coef []float64) float64 {
	var e float64
	for _, c := range coef {
		e += c * c
	}
	return 0.5 * math.Log2(e/float64(len(coef))+1e-9)
}

func quantize(v, step float64, levels int) int {
	idx := int(math.Round(v/step)) + levels/2
	return clampIndex(idx, levels)
}

func dequantize(idx int, step float64) float64 {
	return step * float64(idx)
}

// quantizeCoefficients scales MDCT coefficients down by the gain so the
// AVQ stage(s) quantise a roughly unit-variance residual, returning the
// scaled coefficients and the Q-format exponent applied (spec's
// scoef_SWB/scoef_SWBQ).
func quantizeCoefficients(coef []float64, gainLog float64) ([]float64, int) {
	gain := math.Pow(2, gainLog)
	if gain == 0 {
		gain = 1
	}
	out := make([]float64, len(coef))
	for i, c := range coef {
		out[i] = c / gain
	}
	return out, int(math.Round(gainLog))
}
