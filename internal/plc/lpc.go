package plc

import "github.com/gowideband/g722swb/internal/dsp"

// Autocorr computes LPCOrder+1 autocorrelation coefficients of x, rescaling
// the input by right-shifts whenever the running sum saturates. Spec §9
// notes the reference's global `Overflow` flag used only to drive this
// rescaling loop; here that becomes a local `while` over a saturation
// check instead of a global.
func Autocorr(x []int16) [LPCOrder + 1]int32 {
	var r [LPCOrder + 1]int32
	shift := 0
	for {
		overflow := false
		for i := range r {
			r[i] = 0
		}
		for lag := 0; lag <= LPCOrder; lag++ {
			var acc int32
			for n := lag; n < len(x); n++ {
				xn := dsp.Shr16(x[n], shift)
				xnl := dsp.Shr16(x[n-lag], shift)
				acc = dsp.LMac(acc, xn, xnl)
				if acc == 0x7fffffff || acc == -0x80000000 {
					overflow = true
				}
			}
			r[lag] = acc
		}
		if !overflow || shift >= 8 {
			break
		}
		shift++
	}
	return r
}

// Levinson runs Levinson-Durbin recursion on autocorrelation coefficients
// r, producing LPC coefficients al[1..LPCOrder] (al[0] is always 1 and is
// not stored, matching spec's al[0..M] where al[0] is implicit unity gain).
func Levinson(r [LPCOrder + 1]int32) [LPCOrder + 1]int16 {
	var al [LPCOrder + 1]int16
	if r[0] == 0 {
		return al
	}
	a := make([]float64, LPCOrder+1)
	rf := make([]float64, LPCOrder+1)
	for i, v := range r {
		rf[i] = float64(v)
	}
	errv := rf[0]
	a[0] = 1
	for i := 1; i <= LPCOrder; i++ {
		var acc float64
		for j := 1; j < i; j++ {
			acc += a[j] * rf[i-j]
		}
		if errv == 0 {
			break
		}
		k := -(rf[i] + acc) / errv
		newA := make([]float64, LPCOrder+1)
		copy(newA, a)
		newA[i] = k
		for j := 1; j < i; j++ {
			newA[j] = a[j] + k*a[i-j]
		}
		a = newA
		errv *= (1 - k*k)
		if errv < 0 {
			errv = 0
		}
	}
	for i := 1; i <= LPCOrder; i++ {
		al[i] = dsp.ExtractL(dsp.ClampL(int32(a[i]*16384), -32768, 32767))
	}
	return al
}

// AnalyzeLPC runs Autocorr + Levinson over one analysis window, storing the
// previous coefficients into Alast and the new ones into Al (spec's
// al[0..M]/alast[0..M]).
func (s *State) AnalyzeLPC(window []int16) {
	s.Alast = s.Al
	r := Autocorr(window)
	// A small positive bias on r[0] (white-noise correction) keeps the
	// recursion well-conditioned on near-silent frames.
	r[0] = dsp.LAdd(r[0], r[0]>>8+1)
	s.Al = Levinson(r)
}

// AZFilterQ0Q1 runs the analysis (zero) filter form azfilterQ0_Q1: an
// all-zero filter driven by the synthesis-filter memory, used to snapshot
// cascaded LT+ST synthesis filter ringing on first erasure (spec §4.7.2
// step 1, "OLAL samples").
func AZFilterQ0Q1(al [LPCOrder + 1]int16, mem [LPCOrder]int16, in []int16) []int16 {
	out := make([]int16, len(in))
	state := mem
	for n, x := range in {
		var acc int32 = dsp.LDepositL(x)
		for i := 1; i <= LPCOrder; i++ {
			acc = dsp.LMac(acc, al[i], state[i-1])
		}
		y := dsp.ExtractL(dsp.ClampL(acc, -32768, 32767))
		copy(state[1:], state[:len(state)-1])
		state[0] = x
		out[n] = y
	}
	return out
}

// APFilterQ1Q0 is the complementary all-pole synthesis filter form
// (apfilterQ1_Q0), the inverse of AZFilterQ0Q1 over the same coefficients.
func APFilterQ1Q0(al [LPCOrder + 1]int16, mem [LPCOrder]int16, in []int16) []int16 {
	out := make([]int16, len(in))
	state := mem
	for n, x := range in {
		var acc int32 = dsp.LDepositL(x)
		for i := 1; i <= LPCOrder; i++ {
			acc = dsp.LMsu(acc, al[i], state[i-1])
		}
		y := dsp.ExtractL(dsp.ClampL(acc, -32768, 32767))
		copy(state[1:], state[:len(state)-1])
		state[0] = y
		out[n] = y
	}
	return out
}

// ApFilterQ0Q0 is the plain all-pole LPC synthesis filter used by noise
// filling (spec §4.7.2 step 4 "apfilterQ0_Q0").
func ApFilterQ0Q0(al [LPCOrder + 1]int16, mem *[LPCOrder]int16, in []int16) []int16 {
	out := make([]int16, len(in))
	for n, x := range in {
		var acc int32 = dsp.LDepositL(x)
		for i := 1; i <= LPCOrder; i++ {
			acc = dsp.LMsu(acc, al[i], mem[i-1])
		}
		y := dsp.ExtractL(dsp.ClampL(acc, -32768, 32767))
		copy(mem[1:], mem[:len(mem)-1])
		mem[0] = y
		out[n] = y
	}
	return out
}
