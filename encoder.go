package g722swb

import (
	"github.com/gowideband/g722swb/internal/adpcm"
	"github.com/gowideband/g722swb/internal/avq"
	"github.com/gowideband/g722swb/internal/bitpack"
	"github.com/gowideband/g722swb/internal/bwe"
	"github.com/gowideband/g722swb/internal/plclog"
	"github.com/gowideband/g722swb/internal/qmf"
)

// residualBoost is the extra Q8 log2 gain exponent the stage-2 AVQ layer
// applies on top of the fenv-derived per-vector gain (spec §4.6): stage 2
// quantises stage 1's leftover residual, which runs at a much lower
// energy than the original coefficients, so a fixed extra amplification
// keeps it inside RE8's working radius without needing its own
// transmitted gain field. Both encoder and decoder apply the same
// constant, so nothing needs to cross the wire for it.
const residualBoost = -1024

// Encoder is one encoder session (spec §6.1): keyed at construction by
// input sample rate and operating mode, mutated sequentially one 5 ms
// frame at a time. Not safe for concurrent use; independent sessions
// share no state.
type Encoder struct {
	mode  Mode
	sampf int

	hp  adpcm.HighpassState
	wb  *qmf.Bank
	swb *qmf.Bank // nil for plain wideband modes

	low      adpcm.SubBandState
	high     adpcm.SubBandState
	truncLow adpcm.SubBandState // shadow low-band state for R1wm noise shaping

	bwe  *bwe.State // nil for plain wideband modes
	avq1 avq.State
	avq2 avq.State

	log plclog.Logger
}

// NewEncoder constructs an encoder session for sampf ∈ {16000, 32000}
// and mode ∈ {R00wm..R3sm}. Wideband modes (R00wm, R0wm, R1wm) require
// 16 kHz input; super-wideband modes (R1sm, R2sm, R3sm) require 32 kHz.
func NewEncoder(sampf int, mode Mode, opts ...Option) (*Encoder, error) {
	if !mode.valid() {
		return nil, ErrInvalidMode
	}
	if sampf != 16000 && sampf != 32000 {
		return nil, ErrInvalidSampleRate
	}
	if mode.isSWB() && sampf != 32000 {
		return nil, ErrInvalidSampleRate
	}
	if !mode.isSWB() && sampf != 16000 {
		return nil, ErrInvalidSampleRate
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Encoder{
		mode:  mode,
		sampf: sampf,
		wb:    qmf.NewWBBank(),
		log:   o.logger,
	}
	if mode.isSWB() {
		e.swb = qmf.NewSWBBank()
		e.bwe = bwe.NewState()
	}
	e.low.Reset()
	e.high.Reset()
	e.truncLow.Reset()
	return e, nil
}

// Reset clears all per-session working state without reallocating it,
// equivalent to the reference's per-handle reset() (spec §6.1).
func (e *Encoder) Reset() {
	e.hp.Reset()
	e.wb.Reset()
	if e.swb != nil {
		e.swb.Reset()
	}
	e.low.Reset()
	e.high.Reset()
	e.truncLow.Reset()
	if e.bwe != nil {
		e.bwe.Reset()
	}
	e.avq1.Reset()
	e.avq2.Reset()
}

// Encode runs one 5 ms frame through the session's mode pipeline,
// returning the mode's fixed-size on-the-wire frame (spec §6.2).
// len(inwave) must equal frameLen(sampf).
func (e *Encoder) Encode(inwave []int16) ([]byte, error) {
	want := frameLen(e.sampf)
	if len(inwave) != want {
		e.log.MalformedFrame("input frame length mismatch", len(inwave))
		return nil, ErrInvalidFrameLength
	}

	emph := make([]int16, want)
	for i, x := range inwave {
		emph[i] = e.hp.Apply(e.sampf, x)
	}

	var low8, high8 []int16
	var highBand []float64

	if e.mode.isSWB() {
		low16, high16 := e.swb.AnalyzeBlock(emph)
		low8, high8 = e.wb.AnalyzeBlock(low16)
		highBand = make([]float64, len(high16))
		for i, v := range high16 {
			highBand[i] = float64(v)
		}
	} else {
		low8, high8 = e.wb.AnalyzeBlock(emph)
	}

	enhMode := adpcm.EnhNone
	var swbBytes, avq1Bytes, avq2Bytes []byte

	if e.mode.isSWB() {
		hb := make([]float64, bwe.MDCTLen)
		copy(hb, highBand)
		payload, scoef, _ := e.bwe.Encode(hb)
		swbBytes = bwe.PackPayload(payload)

		residual := scoef
		if e.mode == R2sm || e.mode == R3sm {
			gainQ := fenvGainQs(payload.FenvIdx, len(residual)/avq.Dim, 0)
			var layerResidual []float64
			avq1Bytes, layerResidual = encodeAVQLayer(&e.avq1, residual, gainQ, int(payload.CodMode))
			residual = layerResidual
		}
		if e.mode == R3sm {
			gainQ := fenvGainQs(payload.FenvIdx, len(residual)/avq.Dim, residualBoost)
			avq2Bytes, _ = encodeAVQLayer(&e.avq2, residual, gainQ, int(payload.CodMode))
			if payload.WBEnhFlag {
				enhMode = adpcm.Enh1Bit
			}
		}
	}

	var native [bitpack.SamplesPerFrame]byte
	wbeBits := make([]bool, bitpack.SamplesPerFrame)
	for i := range low8 {
		ls := adpcm.EncodeLowBandSample(&e.low, low8[i], enhMode)
		ih := adpcm.EncodeHighBandSample(&e.high, high8[i])
		native[i] = byte(ls.IL<<2) | byte(ih&0x3)
		if enhMode == adpcm.Enh1Bit {
			wbeBits[i] = ls.Enh&1 != 0
		}
		if e.mode == R1wm {
			adpcm.ScalableNoiseShaping(&e.low, &e.truncLow)
		}
	}

	packed := bitpack.PackFrame(native)
	out := append([]byte(nil), bitpack.Truncate(packed, e.mode.g722CoreBytes())...)

	switch e.mode {
	case R1sm:
		out = append(out, swbBytes...)
	case R2sm:
		out = append(out, swbBytes...)
		out = append(out, avq1Bytes...)
	case R3sm:
		out = append(out, swbBytes...)
		out = append(out, avq1Bytes...)
		out = append(out, packBits(wbeBits)...)
		out = append(out, avq2Bytes...)
	}

	return out, nil
}

// encodeAVQLayer quantises scoef onto RE8 in avq.Dim-sized groups and
// returns both the packed codewords and the per-sample quantisation
// residual, which a following enhancement layer (stage 2) can in turn
// quantise to refine what stage 1 left over (spec §4.6). gainQ carries one
// per-vector gain exponent, indexed the same way as the Dim-sized groups.
func encodeAVQLayer(s *avq.State, scoef []float64, gainQ []int16, codMode int) (packed []byte, residual []float64) {
	n := len(scoef) / avq.Dim
	codewords := make([]avq.Codeword, n)
	residual = make([]float64, len(scoef))
	for i := 0; i < n; i++ {
		var v [avq.Dim]float64
		for j := 0; j < avq.Dim; j++ {
			v[j] = scoef[i*avq.Dim+j]
		}
		g := int16(0)
		if i < len(gainQ) {
			g = gainQ[i]
		}
		cw := avq.EncodeVector(v, g)
		recon := avq.DecodeVector(cw, g)
		for j := 0; j < avq.Dim; j++ {
			residual[i*avq.Dim+j] = v[j] - recon[j]
		}
		codewords[i] = cw
	}
	s.PrevCodMode = codMode
	return avq.PackLayer(codewords), residual
}

// fenvGainQs derives one per-vector Q8 log2 gain exponent for each of
// numVecs avq.Dim-sized AVQ groups from the SWB frequency envelope (spec
// §4.6's "sub-band gain normalisation"): each vector maps onto whichever
// frequency-envelope band covers its position, so the decoder can
// recompute the identical exponent from the already-decoded payload
// without any additional wire bits. boost is a fixed extra exponent
// (Q8) applied uniformly, used by the stage-2 residual layer.
func fenvGainQs(fenvIdx [bwe.SWBNormalFenv]int, numVecs int, boost int16) []int16 {
	out := make([]int16, numVecs)
	for i := 0; i < numVecs; i++ {
		band := i * bwe.SWBNormalFenv / numVecs
		if band >= bwe.SWBNormalFenv {
			band = bwe.SWBNormalFenv - 1
		}
		level := bwe.FenvLevel(fenvIdx[band])
		out[i] = int16(256*level) + boost
	}
	return out
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
