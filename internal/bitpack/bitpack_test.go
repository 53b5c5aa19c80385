package bitpack

import (
	"math/rand"
	"testing"
)

// TestRoundTripIsIdentity is testable property 3 from spec §8: PackFrame
// then UnpackFrame is the identity on all 40-byte inputs.
func TestRoundTripIsIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		var native [SamplesPerFrame]byte
		for i := range native {
			native[i] = byte(r.Intn(256))
		}
		packed := PackFrame(native)
		back := UnpackFrame(packed)
		if back != native {
			t.Fatalf("trial %d: round trip mismatch", trial)
		}
	}
}

func TestTruncationDropsLowPriorityPlanesOnly(t *testing.T) {
	var native [SamplesPerFrame]byte
	for i := range native {
		native[i] = 0xff // all bits set
	}
	packed := PackFrame(native)
	truncated := Truncate(packed, BytesForPlanes(6))
	recon := UnpackTruncated(truncated)

	// With all-ones input, every plane carries 1s; dropping the last two
	// planes (b1,b0) should zero exactly those two bit positions.
	for _, s := range recon {
		if s&(1<<7) == 0 || s&(1<<6) == 0 {
			t.Fatalf("kept plane bit missing in truncated reconstruction: %08b", s)
		}
		if s&1 != 0 || s&2 != 0 {
			t.Fatalf("dropped plane (b0/b1) leaked into reconstruction: %08b", s)
		}
	}
}

func TestPlaneByteConversions(t *testing.T) {
	if BytesForPlanes(PlanesForBytes(30)) != 30 {
		t.Fatalf("plane/byte conversion not inverse for 30 bytes")
	}
	if PlanesForBytes(30) != 6 {
		t.Fatalf("expected 6 planes for 30 bytes, got %d", PlanesForBytes(30))
	}
}
