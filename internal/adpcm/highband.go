package adpcm

import "github.com/gowideband/g722swb/internal/dsp"

// highBandQuantBounds/Levels reuse the same generation strategy as the
// low-band tables (see tables.go) scaled for the 2-bit high-band quantizer.
var highBandQuantBounds = generateBounds(3, 320)
var highBandInvQuant = generateLevels(4, 320)

// HighBandQuantize implements the 2-bit quantizer on the high-band
// prediction-error signal (spec §4.3).
func HighBandQuantize(diff int16, det int32) int16 {
	mag := dsp.Abs16(diff)
	scaled := scaleDiff(mag, det)
	idx := int16(0)
	for idx < int16(len(highBandQuantBounds)) && int32(scaled) > highBandQuantBounds[idx] {
		idx++
	}
	ih := idx
	if diff < 0 {
		ih = dsp.Sub16(3, ih)
	}
	return ih & 0x3
}

// InvQAH reconstructs the high-band difference signal.
func InvQAH(ih int16, deth int32) int16 {
	level := highBandInvQuant[ih&0x3]
	return dsp.ExtractL(dsp.ClampL(dsp.LMult0(int16(level), int16(clampDet(deth))), -32768, 32767))
}

// LogSchHigh updates nbh from a 2-bit code (spec's logsch).
func (s *SubBandState) LogSchHigh(ih int16) {
	s.UpdateScale(HighBand, ih, 2)
}

// ScaleHHigh is scaleh(nbh) (spec §4.3).
func (s *SubBandState) ScaleHHigh() int32 {
	minD, maxD := HighBand.minMaxDet()
	return scaleFromLog(s.Nb, minD, maxD)
}
