package avq

import (
	"math"

	"github.com/gowideband/g722swb/internal/dsp"
)

// State is the AVQ encoder/decoder mirror (spec §3 "AVQState"): the
// previous coding-mode cache and per-band quantisation-residual buffers for
// the two SWB enhancement layers.
type State struct {
	PrevCodMode  int
	ResidualLo   [Dim]float64 // stage-1 enhancement residual buffer
	ResidualHi   [Dim]float64 // stage-2 enhancement residual buffer
	VoronoiOrder int          // 0 = base codebook, >0 = Voronoi extension order
}

// Reset clears the AVQ buffers on packet loss (spec's bwe_avq_buf_reset).
func (s *State) Reset() {
	s.ResidualLo = [Dim]float64{}
	s.ResidualHi = [Dim]float64{}
	s.VoronoiOrder = 0
}

// Codeword is one encoded 8-dimensional vector. Base is the full RE8
// point RE8PPV actually found, kept for the encoder's own successive-
// refinement residual computation; Pos/Sign/MagBucket/VoronoiOrd are the
// fields that survive onto the wire (spec §4.6 "packing of codebook
// index + Voronoi index + sign bits"; see pack.go for the byte layout
// the session's per-vector budget admits).
type Codeword struct {
	Base       Point
	Pos        int  // 0..Dim-1: which coordinate carries the dominant lattice pulse
	Sign       bool // true = negative
	MagBucket  int  // 0..7: |Base[Pos]| rounded to the nearest unit of 4 (the smallest lattice-valid magnitude step for a single nonzero coordinate)
	VoronoiOrd int  // 0 or 1 once clamped to the single bit the wire format carries
}

// baseRadius bounds the base RE8 codebook before a Voronoi extension is
// needed, per spec §4.6 "optional Voronoi extension when the target
// vector exceeds base codebook radius".
const baseRadius = 12.0

// EncodeVector quantises an 8-dimensional sub-band vector onto RE8,
// applying gain normalisation first (spec's swbl1_encode_AVQ): the target
// vector is scaled by gainQ (a Q8 log2 exponent the caller derives from
// data already on the wire, e.g. the SWB frequency envelope, so no
// separate gain bits are needed), then RE8PPV searches for the nearest
// lattice point in fixed point, extending into a Voronoi shell if the
// normalised vector still exceeds baseRadius.
func EncodeVector(x [Dim]float64, gainQ int16) Codeword {
	scale := normScale(gainQ)
	var scaled [Dim]float64
	for i := range x {
		scaled[i] = x[i] * scale
	}

	order := 0
	reduced := scaled
	for vectorNorm(reduced) > baseRadius && order < 4 {
		order++
		for i := range reduced {
			reduced[i] /= 2
		}
	}

	var xq [Dim]int32
	for i := range reduced {
		xq[i] = toFixed(reduced[i])
	}
	base := RE8PPV(xq)

	pos, dominant := dominantCoord(base)
	sign := dominant < 0
	if sign {
		dominant = -dominant
	}
	bucket := int((dominant + 2) / 4)
	if bucket > 7 {
		bucket = 7
	}

	wireOrder := order
	if wireOrder > 1 {
		wireOrder = 1 // only one bit of shell order survives onto the wire
	}

	return Codeword{
		Base:       base,
		Pos:        pos,
		Sign:       sign,
		MagBucket:  bucket,
		VoronoiOrd: wireOrder,
	}
}

// dominantCoord returns the index and signed value of p's largest-
// magnitude coordinate, the single pulse the wire format carries.
func dominantCoord(p Point) (pos int, value int32) {
	best := int32(-1)
	for i, c := range p {
		a := c
		if a < 0 {
			a = -a
		}
		if a > best {
			best = a
			pos = i
			value = c
		}
	}
	return pos, value
}

// DecodeVector reconstructs the 8-dimensional vector from a wire-exact
// Codeword (spec's swbl1_decode_AVQ): rebuild the single transmitted
// lattice pulse (the dominant coordinate RE8PPV found; the remaining
// seven reconstruct as zero, a one-pulse RE8 approximation of the
// encoder's full search result, see pack.go), undo the Voronoi shell
// scaling, then the gain normalisation. gainQ must be the same exponent
// EncodeVector was called with.
func DecodeVector(cw Codeword, gainQ int16) [Dim]float64 {
	var p Point
	mag := int32(cw.MagBucket) * 4
	if cw.Sign {
		mag = -mag
	}
	p[cw.Pos] = mag

	shell := dsp.Shl16(1, cw.VoronoiOrd)
	invScale := 1.0 / normScale(gainQ)

	var v [Dim]float64
	for i := range v {
		v[i] = float64(p[i]) * float64(shell) * invScale
	}
	return v
}

func vectorNorm(x [Dim]float64) float64 {
	var m float64
	for _, v := range x {
		a := v
		if a < 0 {
			a = -a
		}
		if a > m {
			m = a
		}
	}
	return m
}

// normScale maps a Q8 log2 gain index into the linear multiplier
// EncodeVector applies before the lattice search: gainQ approximates the
// vector's own log2 magnitude (see root package's fenvGainQs), so
// dividing by 2^(gainQ/256) brings the vector into RE8's working range
// regardless of the input signal's level.
func normScale(gainQ int16) float64 {
	return math.Pow(2, -float64(gainQ)/256.0)
}

// toFixed converts a normalised-range float64 into Q`reQShift` fixed
// point for RE8PPV; values are already clamped into RE8's working range
// by the gain normalisation and Voronoi reduction above, so this never
// needs to saturate in practice.
func toFixed(v float64) int32 {
	scaled := v * float64(reQScale)
	if scaled >= 0 {
		return int32(scaled + 0.5)
	}
	return int32(scaled - 0.5)
}
