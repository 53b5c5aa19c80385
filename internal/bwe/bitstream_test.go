package bwe

import "testing"

func TestPackUnpackPayloadRoundTripsWithinTransmittedPrecision(t *testing.T) {
	p := Payload{
		CodMode: ModeHarmonic,
		TenvIdx: [SWBTEnv]int{1, 2, 3, 4},
		GainIdx: 17,
		FenvIdx: [SWBNormalFenv]int{0, 1, 2, 3, 0, 1, 2, 3},
	}
	data := PackPayload(p)
	if len(data) != PayloadBytes {
		t.Fatalf("expected %d bytes, got %d", PayloadBytes, len(data))
	}
	got := UnpackPayload(data)
	if got.CodMode != p.CodMode {
		t.Fatalf("cod_mode mismatch: got %v want %v", got.CodMode, p.CodMode)
	}
	if got.GainIdx != p.GainIdx {
		t.Fatalf("gain index mismatch: got %v want %v", got.GainIdx, p.GainIdx)
	}
	for i := range p.TenvIdx {
		if got.TenvIdx[i] != p.TenvIdx[i] {
			t.Fatalf("tenv[%d] mismatch: got %v want %v", i, got.TenvIdx[i], p.TenvIdx[i])
		}
	}
	for i := range p.FenvIdx {
		if got.FenvIdx[i] != p.FenvIdx[i] {
			t.Fatalf("fenv[%d] mismatch: got %v want %v", i, got.FenvIdx[i], p.FenvIdx[i])
		}
	}
}

func TestPackPayloadClampsOutOfRangeIndices(t *testing.T) {
	p := Payload{GainIdx: 999, TenvIdx: [SWBTEnv]int{99, 99, 99, 99}}
	data := PackPayload(p)
	got := UnpackPayload(data)
	if got.GainIdx != gainLevels-1 {
		t.Fatalf("expected gain index clamped to %d, got %d", gainLevels-1, got.GainIdx)
	}
	if got.TenvIdx[0] != (1<<tenvTxBits)-1 {
		t.Fatalf("expected tenv index clamped, got %d", got.TenvIdx[0])
	}
}
