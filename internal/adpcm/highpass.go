package adpcm

import "github.com/gowideband/g722swb/internal/dsp"

// HighpassState is the 1-tap IIR DC-removal filter applied on the encoder
// input (spec §3 "HighpassState", §6.3). One instance exists per input
// sampling rate.
type HighpassState struct {
	Mem   int16 // previous output sample y[n-1]
	PrevX int16 // previous input sample x[n-1]
}

// filterCoeffs maps spec §6.3's rate->filter_no table to a pole coefficient
// in Q15 for that cutoff; filter_no is kept only as a doc anchor back to
// the spec's naming (5/6/7 for 8/16/32 kHz).
var filterCoeffs = map[int]int16{
	5: 32712, // 8 kHz, filter_no 5
	6: 32746, // 16 kHz, filter_no 6
	7: 32762, // 32 kHz, filter_no 7
}

// FilterNoForRate maps a sampling rate to spec §6.3's filter_no.
func FilterNoForRate(rate int) int {
	switch rate {
	case 8000:
		return 5
	case 16000:
		return 6
	case 32000:
		return 7
	default:
		return 6
	}
}

// Apply runs one sample through the pre-emphasis high-pass: a direct-form
// one-pole DC blocker, y[n] = x[n] - x[n-1] + a*y[n-1].
func (h *HighpassState) Apply(rate int, x int16) int16 {
	a := filterCoeffs[FilterNoForRate(rate)]
	y := dsp.Add16(dsp.Sub16(x, h.PrevX), dsp.Mult(a, h.Mem))
	h.PrevX = x
	h.Mem = y
	return y
}

// Reset clears the filter memory.
func (h *HighpassState) Reset() { *h = HighpassState{} }
