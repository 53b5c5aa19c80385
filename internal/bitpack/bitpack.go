// Package bitpack implements the G.192-style layered bit re-ordering of a
// G.722 5 ms native octet frame (spec §4.4, §6.2): `PackFrame` is
// bst_G722_frame, `UnpackFrame` is bst_frame_G722. Re-ordering by bit-plane
// priority (b2,b3,b4,b5,b6,b7,b1,b0 across the 40 samples of a subframe)
// means truncating the tail of the packed frame drops only the least
// significant bit-planes, which is exactly the graceful degradation §6.2's
// rate table relies on: reading only the first k*5 bytes of a packed
// frame reproduces the lower-rate native codeword up to the planes kept.
package bitpack

// PlaneOrder is the bit-plane priority order, most-significant-to-the-
// decode-quality first. Position i in this slice is bit index
// PlaneOrder[i] of each native byte.
var PlaneOrder = [8]int{2, 3, 4, 5, 6, 7, 1, 0}

// SamplesPerFrame is the number of 8 kHz sub-band samples in a 5 ms WB
// subframe (spec §2).
const SamplesPerFrame = 40

// PackFrame re-orders a 40-byte native G.722 octet stream (one full 8-bit
// codeword per sample) into the 40-byte G.192 layered frame.
func PackFrame(native [SamplesPerFrame]byte) [SamplesPerFrame]byte {
	var frame [SamplesPerFrame]byte
	out := 0
	for _, bit := range PlaneOrder {
		for base := 0; base < SamplesPerFrame; base += 8 {
			var b byte
			for k := 0; k < 8; k++ {
				v := (native[base+k] >> uint(bit)) & 1
				b |= v << uint(7-k)
			}
			frame[out] = b
			out++
		}
	}
	return frame
}

// UnpackFrame is the exact inverse of PackFrame.
func UnpackFrame(frame [SamplesPerFrame]byte) [SamplesPerFrame]byte {
	var native [SamplesPerFrame]byte
	in := 0
	for _, bit := range PlaneOrder {
		for base := 0; base < SamplesPerFrame; base += 8 {
			b := frame[in]
			in++
			for k := 0; k < 8; k++ {
				v := (b >> uint(7-k)) & 1
				native[base+k] |= v << uint(bit)
			}
		}
	}
	return native
}

// PlanesForBytes returns how many bit-planes are fully covered by nBytes
// of a packed frame (nBytes must be a multiple of 5; each plane is
// SamplesPerFrame/8 = 5 bytes).
func PlanesForBytes(nBytes int) int {
	return nBytes / (SamplesPerFrame / 8)
}

// BytesForPlanes is the inverse of PlanesForBytes.
func BytesForPlanes(nPlanes int) int {
	return nPlanes * (SamplesPerFrame / 8)
}

// Truncate returns the first nBytes of a packed frame, the operation a
// lower-rate decoder performs on a higher-rate bitstream (spec §6.2,
// testable property 7).
func Truncate(frame [SamplesPerFrame]byte, nBytes int) []byte {
	if nBytes > SamplesPerFrame {
		nBytes = SamplesPerFrame
	}
	out := make([]byte, nBytes)
	copy(out, frame[:nBytes])
	return out
}

// UnpackTruncated reconstructs a native byte stream from a possibly
// truncated packed frame; missing planes contribute 0 bits, which is
// exactly the bit pattern a lower-rate encoder would have produced by
// never allocating those bits in the first place (spec §6.2 Scenario C).
func UnpackTruncated(frame []byte) [SamplesPerFrame]byte {
	var full [SamplesPerFrame]byte
	copy(full[:], frame)
	return UnpackFrame(full)
}
