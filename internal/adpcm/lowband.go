package adpcm

import "github.com/gowideband/g722swb/internal/dsp"

// LowBandQuantize implements the 6-bit log quantizer on the prediction-
// error signal (spec §4.3): output index il in [0,63].
func LowBandQuantize(diff int16, det int32) int16 {
	mag := dsp.Abs16(diff)
	scaled := scaleDiff(mag, det)
	idx := int16(0)
	for idx < int16(len(lowBandQuantBounds)) && int32(scaled) > lowBandQuantBounds[idx] {
		idx++
	}
	il := idx
	if diff < 0 {
		il = dsp.Sub16(63, il)
	}
	return il & 0x3f
}

// InvQAL reconstructs the 4-bit truncated difference (invqal, spec §4.3):
// used when only the top bits (ilr) of il are available, at R00wm/R0wm.
func InvQAL(ilr int16, detl int32) int16 {
	return InvQBL(ilr<<2, detl, 0)
}

// InvQBL is the mode-aware full-precision inverse quantizer (invqbl).
// mode selects the precision: 0 = base (only the top 4 bits of il, as
// delivered from a 4-bit ilr shifted into il's range), 2/3 = all 6 bits
// of il (mode_enh).
func InvQBL(il int16, detl int32, mode int) int16 {
	idx := il & 0x3f
	if mode == 0 {
		idx &= 0x3c // only the top bits are meaningful at base precision
	}
	level := lowBandInvQuant[idx]
	return dsp.ExtractL(dsp.ClampL(dsp.LMult0(int16(level), int16(clampDet(detl))), -32768, 32767))
}

// LogSclLow updates nbl from a 6-bit code (spec's logscl).
func (s *SubBandState) LogSclLow(il int16) {
	s.UpdateScale(LowBand, il, 6)
}

// ScaleLLow is scalel(nbl) (spec §4.3), exposed for callers (e.g. PLC) that
// need det without going through a full quantize/adapt cycle.
func (s *SubBandState) ScaleLLow() int32 {
	minD, maxD := LowBand.minMaxDet()
	return scaleFromLog(s.Nb, minD, maxD)
}

func scaleDiff(mag int16, det int32) int16 {
	if det == 0 {
		return 0
	}
	v := (int64(mag) << 6) / int64(det)
	if v > 32767 {
		v = 32767
	}
	return int16(v)
}

func clampDet(det int32) int32 {
	if det < 1 {
		return 1
	}
	return det
}
