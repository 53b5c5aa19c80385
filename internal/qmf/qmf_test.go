package qmf

import "testing"

// TestWBReconstructionDelay drives several frames of a simple tone through
// analysis followed by synthesis on zero-state banks (spec §4.2 / testable
// property 5) and checks that the output after the warm-up region is not
// all zero.
func TestWBReconstructionDelay(t *testing.T) {
	ana := NewWBBank()
	syn := NewWBBank()

	n := 400
	in := make([]int16, n)
	for i := range in {
		// A band-limited-ish test tone; exact spectral content isn't the
		// point here, only that the structural round trip is stable.
		in[i] = int16(1000 * sinApprox(float64(i)*0.05))
	}

	out := make([]int16, 0, n)
	for i := 0; i+1 < n; i += 2 {
		l, h := ana.Analyze(in[i], in[i+1])
		o0, o1 := syn.Synthesize(l, h)
		out = append(out, o0, o1)
	}

	// Skip the warm-up region (Ntap samples) before measuring output energy.
	warm := ana.Ntap()
	if warm >= n {
		t.Fatalf("test tone too short for warm-up")
	}
	var energyIn, energyOut float64
	for i := warm; i < n; i++ {
		energyIn += float64(in[i-warm/2]) * float64(in[i-warm/2])
		energyOut += float64(out[i]) * float64(out[i])
	}
	if energyOut == 0 {
		t.Fatalf("synthesis produced all-zero output after warm-up")
	}
}

func TestResetClearsState(t *testing.T) {
	b := NewWBBank()
	b.Analyze(1000, -1000)
	b.Reset()
	for _, v := range b.anaDelay {
		if v != 0 {
			t.Fatalf("Reset did not clear analysis delay line")
		}
	}
}

func TestReloadSynthesisMemoryMatchesSyntheticHistory(t *testing.T) {
	b := NewWBBank()
	b.Synthesize(1234, -567) // leave some stale memory in place

	lowHist := make([]int16, b.ntapHalf)
	highHist := make([]int16, b.ntapHalf)
	for i := range lowHist {
		lowHist[i] = int16(i * 10)
		highHist[i] = int16(-i * 5)
	}
	b.ReloadSynthesisMemory(lowHist, highHist)

	for i := 0; i < b.ntapHalf; i++ {
		idx := len(lowHist) - 1 - i
		wantA := lowHist[idx] + highHist[idx]
		wantB := lowHist[idx] - highHist[idx]
		if b.synA[i] != wantA || b.synB[i] != wantB {
			t.Fatalf("tap %d: synA=%d synB=%d, want %d/%d", i, b.synA[i], b.synB[i], wantA, wantB)
		}
	}
}

func TestReloadSynthesisMemoryHandlesShortHistory(t *testing.T) {
	b := NewWBBank()
	b.ReloadSynthesisMemory([]int16{100}, []int16{-50})
	if b.synA[0] != 50 || b.synB[0] != 150 {
		t.Fatalf("most recent tap mismatch: synA=%d synB=%d", b.synA[0], b.synB[0])
	}
	for i := 1; i < b.ntapHalf; i++ {
		if b.synA[i] != 0 || b.synB[i] != 0 {
			t.Fatalf("tap %d should be zero-filled when history is shorter than NtapHalf", i)
		}
	}
}

func TestSWBBankShape(t *testing.T) {
	b := NewSWBBank()
	if b.Ntap() != 32 {
		t.Fatalf("expected SWB bank Ntap=32, got %d", b.Ntap())
	}
}
