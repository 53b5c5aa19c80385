// Package adpcm implements the G.722 sub-band ADPCM core: the low-band
// 6-bit and high-band 2-bit quantizer/predictor pairs, their shared
// adaptive-prediction update (also reused verbatim by the PLC engine, spec
// §4.7.1 step 8), and the optional wideband enhancement (WBE) refinement of
// the low-band quantizer (spec §4.3).
package adpcm

import "github.com/gowideband/g722swb/internal/dsp"

// SafetyThreshold bounds |a1| + a2, per spec's SubBandState invariant.
const SafetyThreshold = 15360

// SubBandState is one low- or high-band ADPCM predictor/quantizer state
// (spec §3 "SubBandState"). It is mutated sample-by-sample by both encoder
// and decoder in lock-step, and by the PLC engine during re-convergence.
type SubBandState struct {
	A [3]int16 // pole coefficients, A[1],A[2] used (A[0] unused, kept for 1-based clarity)
	B [7]int16 // zero coefficients, B[1..6] used

	D [7]int16 // difference-signal memory, D[0] is the current sample
	P [3]int16 // partially-reconstructed signal, P[0] current
	R [3]int16 // reconstructed signal, R[0] current

	S  int16 // predicted signal (sp+sz)
	Sp int16 // pole contribution
	Sz int16 // zero contribution

	Nb  int16 // log-scale factor, Q11, 0<=Nb<=18432
	Det int32 // linear scale factor, deterministic function of Nb
}

// Reset clears all predictor/quantizer state, used on stream start and on
// PLC adaptive-reset decisions (reset_lsbdec/reset_hsbdec, spec §4.7.2).
func (s *SubBandState) Reset() {
	*s = SubBandState{}
}

// band selects which ROM tables and det bounds apply.
type band int

const (
	LowBand band = iota
	HighBand
)

// minMaxDet returns the linear scale-factor clamp range for the band.
func (b band) minMaxDet() (int32, int32) {
	if b == LowBand {
		return 32, 5120
	}
	return 8, 1280
}

// UpdateScale implements logscl/logsch + scalel/scaleh (spec §4.3): the
// log-scale-factor leak-and-add recurrence followed by the piecewise
// log/linear mapping to a usable linear det.
func (s *SubBandState) UpdateScale(b band, code int16, magBits int) {
	var w int16
	switch b {
	case LowBand:
		idx := int(code) & (len(lowBandW) - 1)
		if magBits > 0 {
			idx = int(code) >> uint(magBits-3)
			idx &= 7
		}
		w = lowBandW[idx%len(lowBandW)]
	case HighBand:
		idx := int(code) & (len(highBandW) - 1)
		w = highBandW[idx]
	}
	leaked := dsp.Mult(s.Nb, 32512)
	nb := dsp.Add16(leaked, w)
	if nb < 0 {
		nb = 0
	}
	if nb > 18432 {
		nb = 18432
	}
	s.Nb = nb
	minD, maxD := b.minMaxDet()
	s.Det = scaleFromLog(s.Nb, minD, maxD)
}

// AdaptivePrediction implements the shared predictor update (spec's
// "plc_adaptive_prediction", reused by the PLC engine during
// re-convergence): RECONS, PARREC, UPPOL2, UPPOL1, UPZERO, the DELAYA
// shift, and finally FILTEP/FILTEZ to produce the next-sample prediction.
//
// d is the (possibly PLC-synthesised) quantized difference signal for this
// sample. hpFilteredP0, when non-nil, overrides the P[0] fed into the sign
// logic with a high-pass-filtered value, matching the PLC's first-four-
// good-frame stabilisation of the high-band pole adaptation (spec
// §4.7.1 step 8).
func (s *SubBandState) AdaptivePrediction(d int16, hpFilteredP0 *int16) {
	// RECONS
	s.D[0] = d
	s.R[0] = dsp.Add16(s.S, d)

	// PARREC
	p0 := dsp.Add16(s.Sz, d)
	s.P[0] = p0
	effectiveP0 := p0
	if hpFilteredP0 != nil {
		effectiveP0 = *hpFilteredP0
	}

	sg0 := signBit(effectiveP0)
	sg1 := signBit(s.P[1])
	sg2 := signBit(s.P[2])

	// UPPOL2
	wd1 := dsp.Shl16(s.A[1], 2)
	var wd2 int16
	if sg0 == sg1 {
		wd2 = dsp.Sub16(0, wd1)
	} else {
		wd2 = wd1
	}
	if wd2 > 32767 {
		wd2 = 32767
	}
	wd3 := dsp.Shr16(wd2, 7)
	if sg0 == sg2 {
		wd3 = dsp.Add16(wd3, 128)
	} else {
		wd3 = dsp.Sub16(wd3, 128)
	}
	wd3 = dsp.Add16(wd3, dsp.Mult(s.A[2], 32512))
	wd3 = dsp.Clamp16(wd3, -12288, 12288)
	ap2 := wd3

	// UPPOL1
	sg0 = signBit(effectiveP0)
	sg1 = signBit(s.P[1])
	var up1 int16
	if sg0 == sg1 {
		up1 = 192
	} else {
		up1 = -192
	}
	ap1 := dsp.Add16(up1, dsp.Mult(s.A[1], 32640))
	limit := dsp.Sub16(SafetyThreshold, ap2)
	ap1 = dsp.Clamp16(ap1, dsp.Sub16(0, limit), limit)

	// UPZERO
	var wd int16
	if d != 0 {
		wd = 128
	}
	for i := 1; i <= 6; i++ {
		leak := dsp.Mult(s.B[i], 32640)
		var term int16
		if wd != 0 {
			if signBit(s.D[i]) == signBit(d) {
				term = wd
			} else {
				term = -wd
			}
		}
		s.B[i] = dsp.Add16(leak, term)
	}

	// DELAYA
	for i := 6; i > 0; i-- {
		s.D[i] = s.D[i-1]
	}
	for i := 2; i > 0; i-- {
		s.R[i] = s.R[i-1]
		s.P[i] = s.P[i-1]
	}
	s.A[2] = ap2
	s.A[1] = ap1

	// FILTEP
	r1d := dsp.Add16(s.R[1], s.R[1])
	t1 := dsp.Mult(s.A[1], r1d)
	r2d := dsp.Add16(s.R[2], s.R[2])
	t2 := dsp.Mult(s.A[2], r2d)
	s.Sp = dsp.Add16(t1, t2)

	// FILTEZ
	var sz int32
	for i := 6; i > 0; i-- {
		dd := dsp.Add16(s.D[i], s.D[i])
		sz = dsp.LAdd(sz, dsp.LDepositL(dsp.Mult(s.B[i], dd)))
	}
	s.Sz = dsp.ExtractL(dsp.ClampL(sz, -32768, 32767))
	s.S = dsp.Add16(s.Sp, s.Sz)
}

func signBit(x int16) bool { return x < 0 }

// RescaleLow recomputes Det from the current Nb using the low-band
// log/linear mapping, without touching Nb itself. Used by the PLC engine
// when it overwrites Nb directly during re-convergence (spec §4.7.1 steps
// 5-7) rather than driving it through LogSclLow's code-indexed update.
func (s *SubBandState) RescaleLow() {
	minD, maxD := LowBand.minMaxDet()
	s.Det = scaleFromLog(s.Nb, minD, maxD)
}

// RescaleHigh is RescaleLow's high-band counterpart.
func (s *SubBandState) RescaleHigh() {
	minD, maxD := HighBand.minMaxDet()
	s.Det = scaleFromLog(s.Nb, minD, maxD)
}
