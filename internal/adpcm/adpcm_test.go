package adpcm

import "testing"

// TestLowBandRoundTrip drives a small synthetic tone through an
// encode/decode pair sharing no direct state coupling beyond the index,
// checking the decoder tracks the encoder's own reconstruction (spec
// §4.3, property 6's local analogue at the sub-band level).
func TestLowBandRoundTrip(t *testing.T) {
	var enc, dec SubBandState
	for i := 0; i < 200; i++ {
		x := int16(3000 * sin(float64(i)*0.1))
		ls := EncodeLowBandSample(&enc, x, EnhNone)
		recon := DecodeLowBandSample(&dec, ls, 6, EnhNone)
		if recon != enc.R[0] {
			t.Fatalf("sample %d: decoder recon %d != encoder recon %d", i, recon, enc.R[0])
		}
	}
}

func TestHighBandRoundTrip(t *testing.T) {
	var enc, dec SubBandState
	for i := 0; i < 200; i++ {
		x := int16(1000 * sin(float64(i)*0.3))
		ih := EncodeHighBandSample(&enc, x)
		recon := DecodeHighBandSample(&dec, ih, nil)
		if recon != enc.R[0] {
			t.Fatalf("sample %d: decoder recon %d != encoder recon %d", i, recon, enc.R[0])
		}
	}
}

func TestPredictorInvariants(t *testing.T) {
	var s SubBandState
	for i := 0; i < 500; i++ {
		x := int16(20000 * sin(float64(i)*0.05))
		EncodeLowBandSample(&s, x, EnhNone)
		if s.A[2] < -12288 || s.A[2] > 12288 {
			t.Fatalf("sample %d: |a2|=%d exceeds 12288", i, s.A[2])
		}
		if int32(abs16(s.A[1]))+int32(s.A[2]) > SafetyThreshold {
			t.Fatalf("sample %d: |a1|+a2=%d exceeds safety threshold", i, int32(abs16(s.A[1]))+int32(s.A[2]))
		}
		if s.Nb < 0 || s.Nb > 18432 {
			t.Fatalf("sample %d: nb=%d out of range", i, s.Nb)
		}
	}
}

func TestResetClears(t *testing.T) {
	var s SubBandState
	EncodeLowBandSample(&s, 12345, EnhNone)
	s.Reset()
	var zero SubBandState
	if s != zero {
		t.Fatalf("Reset did not zero state")
	}
}

func abs16(x int16) int16 {
	if x < 0 {
		return -x
	}
	return x
}

// sin is a tiny local sine so this test file has no dependency beyond the
// package under test.
func sin(x float64) float64 {
	for x > 3.14159265358979 {
		x -= 2 * 3.14159265358979
	}
	for x < -3.14159265358979 {
		x += 2 * 3.14159265358979
	}
	x2 := x * x
	return x * (1 - x2/6*(1-x2/20*(1-x2/42)))
}
