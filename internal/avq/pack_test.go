package avq

import "testing"

func TestPackUnpackLayerRoundTrips(t *testing.T) {
	cws := []Codeword{
		{Pos: 0, Sign: false, MagBucket: 3, VoronoiOrd: 0},
		{Pos: 7, Sign: true, MagBucket: 7, VoronoiOrd: 1},
		{Pos: 4, Sign: true, MagBucket: 0, VoronoiOrd: 0},
		{Pos: 2, Sign: false, MagBucket: 5, VoronoiOrd: 1},
	}
	data := PackLayer(cws)
	if len(data) != len(cws) {
		t.Fatalf("expected %d bytes, got %d", len(cws), len(data))
	}
	got := UnpackLayer(data)
	for i := range cws {
		if got[i] != cws[i] {
			t.Fatalf("codeword %d mismatch: got %+v want %+v", i, got[i], cws[i])
		}
	}
}

func TestPackLayerMasksOutOfRangeFields(t *testing.T) {
	// Pos/MagBucket are only ever produced in-range by EncodeVector, but
	// PackLayer must not corrupt neighbouring bits if handed something
	// wider than 3 bits.
	data := PackLayer([]Codeword{{Pos: 15, MagBucket: 15}})
	got := UnpackLayer(data)
	if got[0].Pos != 15&0x7 || got[0].MagBucket != 15&0x7 {
		t.Fatalf("expected fields masked to 3 bits, got %+v", got[0])
	}
}

func TestApplyBaseLayerOverwritesGroups(t *testing.T) {
	coef := make([]float64, Dim*2)
	for i := range coef {
		coef[i] = 1.0
	}
	cws := []Codeword{
		{Pos: 0, MagBucket: 2, VoronoiOrd: 0},
		{Pos: 1, Sign: true, MagBucket: 1, VoronoiOrd: 0},
	}
	gainQ := []int16{0, 0}
	out := ApplyBaseLayer(coef, cws, gainQ)
	if out[0] == 1.0 {
		t.Fatalf("expected the first group's dominant coordinate overwritten, got %v", out[0])
	}
	if out[Dim+1] >= 0 {
		t.Fatalf("expected the second group's dominant coordinate to carry a negative pulse, got %v", out[Dim+1])
	}
}

func TestApplyResidualLayerAddsOntoCoefficients(t *testing.T) {
	coef := make([]float64, Dim)
	for i := range coef {
		coef[i] = 2.0
	}
	cws := []Codeword{{Pos: 3, MagBucket: 2, VoronoiOrd: 0}}
	gainQ := []int16{0}
	out := ApplyResidualLayer(coef, cws, gainQ)
	for i := range out {
		if i == 3 {
			if out[i] == coef[i] {
				t.Fatalf("expected the dominant coordinate's residual pulse added at index 3")
			}
			continue
		}
		if out[i] != coef[i] {
			t.Fatalf("expected index %d unchanged by the residual layer, got %v want %v", i, out[i], coef[i])
		}
	}
}
