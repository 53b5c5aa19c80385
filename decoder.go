package g722swb

import (
	"github.com/gowideband/g722swb/internal/adpcm"
	"github.com/gowideband/g722swb/internal/avq"
	"github.com/gowideband/g722swb/internal/bitpack"
	"github.com/gowideband/g722swb/internal/bwe"
	"github.com/gowideband/g722swb/internal/plc"
	"github.com/gowideband/g722swb/internal/plclog"
	"github.com/gowideband/g722swb/internal/qmf"
)

// attenSteps is how many frames a mode-switch cross-fade takes to ramp
// sattenu from 0 back to full scale (spec §6.4 / §3 "sattenu (Q15) for
// inter-mode cross-fades").
const attenSteps = 8

// Decoder is one decoder session (spec §6.1), keyed by operating mode;
// set_mode may change it mid-stream. Output sample rate is forced to
// 32 kHz once any SWB mode has been selected (spec §6.1).
type Decoder struct {
	mode            Mode
	prevMode        Mode
	switchRemaining int
	sattenu         int32 // current cross-fade gain, Q15

	wb  *qmf.Bank
	swb *qmf.Bank // nil until the session's first SWB mode

	low  adpcm.SubBandState
	high adpcm.SubBandState

	bweState *bwe.State
	avq1     avq.State
	avq2     avq.State

	hpShadow     adpcm.HighpassState // low-band PLC snapshot companion (spec's rh_m1 family)
	hpShadowHigh adpcm.HighpassState // high-band PLC snapshot companion (spec's ph_m1 family); also supplies the step-8 HP-filtered P[0] override for the first good frames after loss
	plcState     *plc.State
	prevPloss    bool

	log plclog.Logger
}

// NewDecoder constructs a decoder session in the given mode.
func NewDecoder(mode Mode, opts ...Option) (*Decoder, error) {
	if !mode.valid() {
		return nil, ErrInvalidMode
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := &Decoder{
		mode:     mode,
		prevMode: mode,
		wb:       qmf.NewWBBank(),
		plcState: plc.NewState(),
		log:      o.logger,
	}
	if mode.isSWB() {
		d.swb = qmf.NewSWBBank()
		d.bweState = bwe.NewState()
	}
	d.low.Reset()
	d.high.Reset()
	d.sattenu = 1 << 15
	return d, nil
}

// Reset clears all per-session working state.
func (d *Decoder) Reset() {
	d.wb.Reset()
	if d.swb != nil {
		d.swb.Reset()
	}
	d.low.Reset()
	d.high.Reset()
	if d.bweState != nil {
		d.bweState.Reset()
	}
	d.avq1.Reset()
	d.avq2.Reset()
	d.hpShadow.Reset()
	d.hpShadowHigh.Reset()
	d.plcState.Reset()
	d.prevPloss = false
	d.sattenu = 1 << 15
	d.switchRemaining = 0
}

// SetMode changes the session's operating mode mid-stream (spec §6.1);
// output sampling rate is forced to 32 kHz from this point on whenever
// either the old or new mode is SWB, and a cross-fade attenuation ramps
// the decoded output back up over attenSteps frames to mask the
// predictor-state discontinuity (spec §8 Scenario E).
func (d *Decoder) SetMode(mode Mode) error {
	if !mode.valid() {
		return ErrInvalidMode
	}
	if mode == d.mode {
		return nil
	}
	d.log.ModeSwitch(d.mode.String(), mode.String(), 0)
	d.prevMode = d.mode
	d.mode = mode
	d.switchRemaining = attenSteps
	d.sattenu = 0
	if mode.isSWB() && d.swb == nil {
		d.swb = qmf.NewSWBBank()
		d.bweState = bwe.NewState()
	}
	return nil
}

// Decode runs one 5 ms frame: bitstream carries the mode's fixed byte
// count (ignored entirely when ploss is true, per spec §6.4). The return
// slice has frameLen(outputRate) samples.
func (d *Decoder) Decode(bitstream []byte, ploss bool) ([]int16, error) {
	if !ploss && len(bitstream) != d.mode.frameBytes() {
		d.log.MalformedFrame("bitstream length does not match mode frame size", len(bitstream))
		return nil, ErrMalformedBitstream
	}

	var low8, high8 []int16
	var highBandOut []float64

	if ploss {
		d.log.ErasureStart(d.plcState.CfeCount, d.plcState.Merit, d.plcState.Ppf)
		lowOut, highOut := d.plcState.ConcealFrame(&d.low, &d.high, &d.hpShadow, &d.hpShadowHigh)
		low8, high8 = lowOut, highOut
		d.prevPloss = true
	} else {
		coreBytes := d.mode.g722CoreBytes()
		var native [bitpack.SamplesPerFrame]byte
		unpacked := bitpack.UnpackTruncated(bitstream[:coreBytes])
		native = unpacked

		bitsPresent := 4
		if coreBytes >= 40 {
			bitsPresent = 6
		}

		low8 = make([]int16, bitpack.SamplesPerFrame)
		high8 = make([]int16, bitpack.SamplesPerFrame)
		for i := 0; i < bitpack.SamplesPerFrame; i++ {
			il := int16(native[i]>>2) & 0x3f
			ih := int16(native[i]) & 0x3
			ls := adpcm.LowBandSample{IL: il}
			low8[i] = adpcm.DecodeLowBandSample(&d.low, ls, bitsPresent, adpcm.EnhNone)

			var hpFilteredP0 *int16
			if d.plcState.HPFlag && i < 4 && d.plcState.NBHModeSel != plc.NBHPass {
				filtered := d.hpShadowHigh.Apply(16000, d.high.P[0])
				if d.plcState.NBHModeSel == plc.NBHPartial {
					filtered = int16((int32(filtered) + int32(d.high.P[0])) / 2)
				}
				hpFilteredP0 = &filtered
			}
			high8[i] = adpcm.DecodeHighBandSample(&d.high, ih, hpFilteredP0)
		}

		rest := bitstream[coreBytes:]
		if d.mode.isSWB() {
			highBandOut = d.decodeSWBLayers(rest, true)
		}

		if d.prevPloss {
			goodFrame := interleave(low8, high8)
			d.log.Recovered(d.plcState.Lag, d.plcState.Ngfae+1)
			resynced := d.plcState.Resync(goodFrame, &d.low, &d.high, &d.hpShadow, &d.hpShadowHigh, d.wb)
			low8, high8 = deinterleave(resynced)
		}
		d.prevPloss = false
	}

	var out []int16
	if d.swb != nil {
		lowF := make([]int16, len(low8))
		copy(lowF, low8)
		low16 := d.wb.SynthesizeBlock(lowF, high8)
		if highBandOut == nil {
			highBandOut = make([]float64, bwe.MDCTLen/2)
		}
		high16 := floatToInt16(upsampleHighBand(highBandOut, len(low16)))
		out = d.swb.SynthesizeBlock(low16, high16)
	} else {
		out = d.wb.SynthesizeBlock(low8, high8)
	}

	out = d.applyModeSwitchAttenuation(out)
	return out, nil
}

// decodeSWBLayers parses the SWB-0/SWB-1/WBE/AVQ-stage-2 extension bytes
// for the session's current mode and returns the reconstructed 16 kHz
// high-band block from the BWE decoder.
func (d *Decoder) decodeSWBLayers(rest []byte, goodFrame bool) []float64 {
	if len(rest) < bwe.PayloadBytes {
		return nil
	}
	payload := bwe.UnpackPayload(rest[:bwe.PayloadBytes])
	rest = rest[bwe.PayloadBytes:]

	var layer1, layer2 []avq.Codeword
	if (d.mode == R2sm || d.mode == R3sm) && len(rest) >= avqLayerBytes() {
		layer1 = avq.UnpackLayer(rest[:avqLayerBytes()])
		rest = rest[avqLayerBytes():]
	}
	if d.mode == R3sm {
		wbeBytes := (bitpack.SamplesPerFrame + 7) / 8
		if len(rest) >= wbeBytes {
			rest = rest[wbeBytes:]
		}
		if len(rest) >= avqLayerBytes() {
			layer2 = avq.UnpackLayer(rest[:avqLayerBytes()])
		}
	}

	coef, _ := d.bweState.DecodeFreqCoef(payload, nil, goodFrame)
	if layer1 != nil {
		gainQ := fenvGainQs(payload.FenvIdx, len(layer1), 0)
		coef = avq.ApplyBaseLayer(coef, layer1, gainQ)
	}
	if layer2 != nil {
		gainQ := fenvGainQs(payload.FenvIdx, len(layer2), residualBoost)
		coef = avq.ApplyResidualLayer(coef, layer2, gainQ)
	}
	return d.bweState.DecodeTimePos(coef, payload)
}

func avqLayerBytes() int { return (bwe.MDCTLen / 2) / avq.Dim }

// applyModeSwitchAttenuation ramps sattenu from 0 back to full scale
// (Q15) over attenSteps frames following SetMode, cross-fading the
// output so the predictor-state discontinuity isn't audible.
func (d *Decoder) applyModeSwitchAttenuation(samples []int16) []int16 {
	if d.switchRemaining <= 0 {
		return samples
	}
	d.switchRemaining--
	step := attenSteps - d.switchRemaining // 1..attenSteps
	gain := int32(1<<15) * int32(step) / int32(attenSteps)
	if gain > 1<<15 {
		gain = 1 << 15
	}
	d.sattenu = gain
	out := make([]int16, len(samples))
	for i, v := range samples {
		out[i] = int16(int32(v) * int32(d.sattenu) >> 15)
	}
	return out
}

func interleave(low, high []int16) []int16 {
	out := make([]int16, len(low)+len(high))
	for i := range low {
		out[2*i] = low[i]
		if i < len(high) {
			out[2*i+1] = high[i]
		}
	}
	return out
}

func deinterleave(samples []int16) (low, high []int16) {
	n := len(samples) / 2
	low = make([]int16, n)
	high = make([]int16, n)
	for i := 0; i < n; i++ {
		low[i] = samples[2*i]
		high[i] = samples[2*i+1]
	}
	return low, high
}

// upsampleHighBand nearest-neighbour expands the BWE decoder's half-rate
// output to the full sample count the SWB QMF synthesis stage expects.
// The BWE package's MDCT hop runs at half the frame's sample count (see
// internal/bwe); this keeps the session-level pipeline wired without
// re-deriving the MDCT framing (see DESIGN.md).
func upsampleHighBand(x []float64, n int) []float64 {
	out := make([]float64, n)
	if len(x) == 0 {
		return out
	}
	for i := range out {
		src := i * len(x) / n
		if src >= len(x) {
			src = len(x) - 1
		}
		out[i] = x[src]
	}
	return out
}

func floatToInt16(x []float64) []int16 {
	out := make([]int16, len(x))
	for i, v := range x {
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}
