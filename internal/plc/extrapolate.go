package plc

import "math"

// OLAL is the overlap-add length used when splicing periodic extrapolation
// onto the pre-erasure ringing (spec §4.7.2 step 3).
const OLAL = 16

// Merit computes the figure of merit (spec GLOSSARY): a scalar combining
// log-gain, pitch-prediction gain, and the first autocorrelation
// coefficient, gating the periodic/noise extrapolation mix.
func Merit(xq []int16, base, pp int) int32 {
	var energy, cor, r1num, r1den float64
	for i := 0; i < FrameSize; i++ {
		idx := base + i
		ref := base + i - pp
		if idx < 0 || idx >= len(xq) || ref < 0 || ref >= len(xq) {
			continue
		}
		energy += float64(xq[ref]) * float64(xq[ref])
		cor += float64(xq[idx]) * float64(xq[ref])
		if i > 0 {
			r1num += float64(xq[idx]) * float64(xq[idx-1])
			r1den += float64(xq[idx]) * float64(xq[idx])
		}
	}
	if energy == 0 {
		energy = 1
	}
	pitchGain := cor * cor / energy
	logGain := 0.0
	if energy > 0 {
		logGain = math.Log2(energy + 1)
	}
	r1 := 0.0
	if r1den > 0 {
		r1 = r1num / r1den
	}
	m := pitchGain*0.5 + logGain*8 + r1*64
	return int32(m)
}

// TestRPC implements testrpc (spec §4.7.1 step 2): gates re-phasing on
// whether both the last good frame before loss and the current good frame
// look voiced/non-unvoiced.
func TestRPC(merit int32, tout []int16) bool {
	if merit <= 256*MLO {
		return false
	}
	var energy int64
	for _, v := range tout {
		energy += int64(v) * int64(v)
	}
	return energy > 0
}

// PeriodicExtrapolate implements spec §4.7.2 step 3: a periodic copy from
// xq one pitch period pp back, scaled by the pitch tap ptfe (Q14), faded in
// linearly over the first OLAL samples. No pre-erasure ringing is added.
func PeriodicExtrapolate(xq []int16, base int, pp int, ptfe int16, n int) []int16 {
	out := make([]int16, n)
	tap := float64(ptfe) / 16384.0
	for i := 0; i < n; i++ {
		ref := base + i - pp
		var v float64
		if ref >= 0 && ref < len(xq) {
			v = float64(xq[ref]) * tap
		}
		if i < OLAL {
			w := float64(i) / float64(OLAL)
			v *= w
		}
		out[i] = clip16(v)
	}
	return out
}

// NoiseFill implements spec §4.7.2 step 4: Gaussian noise with std avm,
// LPC-synthesis filtered. MixPeriodicAndNoise mixes the result with the
// periodic component using a scaler derived from (MHI*256 - merit).
func NoiseFill(al [LPCOrder + 1]int16, mem *[LPCOrder]int16, avm int32, n int, rng *uint32) []int16 {
	excitation := make([]int16, n)
	std := float64(avm)
	for i := range excitation {
		excitation[i] = clip16(gaussian(rng) * std)
	}
	return ApFilterQ0Q0(al, mem, excitation)
}

func MixPeriodicAndNoise(periodic, noise []int16, merit int32) []int16 {
	scale := float64(MHI*256-merit) / float64(MHI*256-MLO*256)
	if scale < 0 {
		scale = 0
	}
	if scale > 1 {
		scale = 1
	}
	out := make([]int16, len(periodic))
	for i := range out {
		v := float64(periodic[i])*(1-scale) + float64(noise[i])*scale
		out[i] = clip16(v)
	}
	return out
}

// GainAttenuationWindow implements spec §4.7.2 step 5: a linear ramp down
// from frame GattStart to GattEnd, muting entirely afterward.
func GainAttenuationWindow(samples []int16, erasedFrameIdx int) []int16 {
	if erasedFrameIdx >= GattEnd {
		out := make([]int16, len(samples))
		return out
	}
	if erasedFrameIdx < GattStart {
		return samples
	}
	span := GattEnd - GattStart
	step := erasedFrameIdx - GattStart
	gain := 1.0 - float64(step)/float64(span)
	out := make([]int16, len(samples))
	for i, v := range samples {
		out[i] = clip16(float64(v) * gain)
	}
	return out
}

func clip16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func gaussian(rng *uint32) float64 {
	var sum float64
	for i := 0; i < 12; i++ {
		*rng = *rng*1664525 + 1013904223
		sum += float64(*rng>>8) / float64(1<<24)
	}
	return sum - 6
}
