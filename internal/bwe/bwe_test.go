package bwe

import (
	"math"
	"testing"
)

func syntheticHighBand() []float64 {
	x := make([]float64, MDCTLen)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.9)
	}
	return x
}

func TestEncodeDecodeProducesAudioRange(t *testing.T) {
	enc := NewState()
	dec := NewState()

	payload, _, _ := enc.Encode(syntheticHighBand())
	coef, _ := dec.DecodeFreqCoef(payload, nil, true)
	out := dec.DecodeTimePos(coef, payload)

	if len(out) != MDCTLen/2 {
		t.Fatalf("unexpected output length %d", len(out))
	}
	var energy float64
	for _, v := range out {
		energy += v * v
	}
	if energy == 0 {
		t.Fatalf("decoded output is all-zero")
	}
}

func TestDecoderDeterministic(t *testing.T) {
	enc := NewState()
	payload, _, _ := enc.Encode(syntheticHighBand())

	dec1 := NewState()
	dec2 := NewState()
	c1, _ := dec1.DecodeFreqCoef(payload, nil, true)
	c2, _ := dec2.DecodeFreqCoef(payload, nil, true)
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("two decoders diverged at bin %d: %v vs %v", i, c1[i], c2[i])
		}
	}
}

func TestPacketLossPathProducesFrameLengthCoefficients(t *testing.T) {
	enc := NewState()
	dec := NewState()
	payload, _, _ := enc.Encode(syntheticHighBand())
	_, _ = dec.DecodeFreqCoef(payload, nil, true)

	lossCoef, _ := dec.DecodeFreqCoef(Payload{}, nil, false)
	if len(lossCoef) != MDCTLen/2 {
		t.Fatalf("unexpected loss-path coefficient length")
	}
}

func TestModeClassificationIsStable(t *testing.T) {
	s := NewState()
	flat := [SWBTEnv]float64{1, 1, 1, 1}
	mode := s.classify(flat, false)
	if mode != ModeHarmonic {
		t.Fatalf("expected HARMONIC for a flat envelope, got %v", mode)
	}
}
