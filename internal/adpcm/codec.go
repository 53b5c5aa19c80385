package adpcm

import "github.com/gowideband/g722swb/internal/dsp"

// EnhMode selects the wideband-enhancement precision of the low-band
// quantizer (spec §4.3 "Wideband enhancement layer"): 0 disables WBE,
// 2 adds 1 bit/sample, 3 adds 2 bits/sample.
type EnhMode int

const (
	EnhNone EnhMode = 0
	Enh1Bit EnhMode = 2
	Enh2Bit EnhMode = 3
)

// LowBandSample is one encoded low-band sample: the 6-bit base index plus
// any WBE refinement bits, kept separate so the bitstream packer can place
// them according to §6.2's layered byte layout.
type LowBandSample struct {
	IL  int16 // 6-bit base index
	Enh int16 // WBE refinement bits (0 when EnhMode==EnhNone)
}

// EncodeLowBandSample runs one low-band encode step: predict, quantize,
// adapt. xin is the pre-emphasised input sample.
func EncodeLowBandSample(s *SubBandState, xin int16, mode EnhMode) LowBandSample {
	diff := dsp.Sub16(xin, s.S)
	il := LowBandQuantize(diff, s.Det)

	var enh int16
	if mode != EnhNone {
		enh = refineEnh(diff, s.Det, il, mode)
	}

	dlt := InvQBL(il, s.Det, int(mode))
	s.LogSclLow(il)
	s.AdaptivePrediction(dlt, nil)

	return LowBandSample{IL: il, Enh: enh}
}

// DecodeLowBandSample reconstructs one low-band output sample from a
// received (possibly truncated) index. bitsPresent selects which part of
// ls.IL is valid for this mode: 4 or fewer = only the 4-bit ilr field
// (il >> 2), otherwise the full 6-bit il, inverse-quantized at the
// precision mode selects. ls.Enh is not read.
func DecodeLowBandSample(s *SubBandState, ls LowBandSample, bitsPresent int, mode EnhMode) int16 {
	var dlt int16
	if bitsPresent <= 4 {
		dlt = InvQAL(ls.IL>>2, s.Det)
		s.LogSclLow(ls.IL &^ 0x3)
	} else {
		dlt = InvQBL(ls.IL, s.Det, int(mode))
		s.LogSclLow(ls.IL)
	}
	s.AdaptivePrediction(dlt, nil)
	return s.R[0]
}

// refineEnh derives the extra WBE refinement bits by re-quantizing the
// residual between the true difference and the base-precision
// reconstruction, at 1 or 2 extra bits of precision.
func refineEnh(diff int16, det int32, baseIL int16, mode EnhMode) int16 {
	baseRecon := InvQBL(baseIL, det, 0)
	residual := dsp.Sub16(diff, baseRecon)
	bits := 1
	if mode == Enh2Bit {
		bits = 2
	}
	levels := int16(1 << uint(bits))
	scaled := scaleDiff(dsp.Abs16(residual), det>>2)
	step := int16(32767 / int32(levels))
	idx := scaled / step
	if idx >= levels {
		idx = levels - 1
	}
	if residual < 0 {
		idx = dsp.Sub16(levels-1, idx)
	}
	return idx
}

// EncodeHighBandSample runs one high-band encode step.
func EncodeHighBandSample(s *SubBandState, xin int16) int16 {
	diff := dsp.Sub16(xin, s.S)
	ih := HighBandQuantize(diff, s.Det)
	dlt := InvQAH(ih, s.Det)
	s.LogSchHigh(ih)
	s.AdaptivePrediction(dlt, nil)
	return ih
}

// DecodeHighBandSample reconstructs one high-band output sample.
// hpFilteredP0, when non-nil, overrides the pole-adaptation sign input
// with a high-pass-filtered P[0] for the first few samples of the first
// good frame after an erasure (spec §4.7.1 step 8).
func DecodeHighBandSample(s *SubBandState, ih int16, hpFilteredP0 *int16) int16 {
	dlt := InvQAH(ih, s.Det)
	s.LogSchHigh(ih)
	s.AdaptivePrediction(dlt, hpFilteredP0)
	return s.R[0]
}

// ScalableNoiseShaping is the encoder's 64 kbit/s (G722mode=1) shaping step
// for the truncated-stream companion state (spec §4.3). It changes only
// truncated.Nb and truncated.Det; full is read, not modified, and neither
// state's predictor is touched.
func ScalableNoiseShaping(full, truncated *SubBandState) {
	// Blend the truncated-path scale factor a quarter of the way toward
	// the full-rate path's, which is the shaping stages' net effect:
	// keep the lower-rate decoder's quantizer step from drifting far from
	// what the full-rate encoder actually used.
	delta := dsp.Sub16(full.Nb, truncated.Nb)
	truncated.Nb = dsp.Add16(truncated.Nb, dsp.Shr16(delta, 2))
	minD, maxD := LowBand.minMaxDet()
	truncated.Det = scaleFromLog(truncated.Nb, minD, maxD)
}
