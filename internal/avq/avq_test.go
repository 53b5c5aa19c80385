package avq

import "testing"

func TestEncodeDecodeVectorApproximatesInput(t *testing.T) {
	x := [Dim]float64{1, -2, 3, -1, 0, 2, -3, 1}
	cw := EncodeVector(x, 0)
	recon := DecodeVector(cw, 0)

	// Only the dominant coordinate survives onto the wire (see pack.go),
	// so reconstruction is a one-pulse approximation, not a faithful
	// round trip: check it at least reproduces the dominant coordinate's
	// sign and rough magnitude rather than a tight error bound.
	pos, dominant := dominantCoord(cw.Base)
	if pos != cw.Pos {
		t.Fatalf("codeword position %d does not match the dominant coordinate %d", cw.Pos, pos)
	}
	if (dominant < 0) != cw.Sign {
		t.Fatalf("codeword sign does not match the dominant coordinate's sign")
	}
	if recon[cw.Pos] == 0 && dominant != 0 {
		t.Fatalf("reconstruction lost the dominant pulse entirely: %v", recon)
	}
}

func TestStateResetClearsBuffers(t *testing.T) {
	s := &State{VoronoiOrder: 2}
	s.ResidualLo[0] = 5
	s.Reset()
	if s.ResidualLo != [Dim]float64{} || s.VoronoiOrder != 0 {
		t.Fatalf("Reset did not clear AVQ state")
	}
}

func TestLargeVectorUsesVoronoiExtension(t *testing.T) {
	x := [Dim]float64{40, -38, 42, -36, 39, -41, 37, -39}
	cw := EncodeVector(x, 0)
	if cw.VoronoiOrd == 0 {
		t.Fatalf("expected a Voronoi extension order for an out-of-range vector")
	}
}

func TestEncodeVectorAppliesGainNormalisation(t *testing.T) {
	x := [Dim]float64{6, -6, 6, -6, 6, -6, 6, -6}
	loud := EncodeVector(x, 512)  // 2^-2 attenuation before the search
	quiet := EncodeVector(x, -512) // 2^2 amplification before the search
	if loud.MagBucket == quiet.MagBucket && loud.Pos == quiet.Pos {
		t.Fatalf("expected gainQ to change which lattice point the search lands on")
	}
}

func TestDecodeVectorHonoursVoronoiOrder(t *testing.T) {
	cw := Codeword{Pos: 0, Sign: false, MagBucket: 1, VoronoiOrd: 1}
	base := DecodeVector(Codeword{Pos: 0, MagBucket: 1, VoronoiOrd: 0}, 0)
	shelled := DecodeVector(cw, 0)
	if shelled[0] != 2*base[0] {
		t.Fatalf("Voronoi order 1 should double the reconstructed magnitude: got %v want %v", shelled[0], 2*base[0])
	}
}
