package plc

import (
	"github.com/gowideband/g722swb/internal/adpcm"
	"github.com/gowideband/g722swb/internal/qmf"
)

// rngSeed is the PLC's own deterministic noise-fill seed, distinct from
// the BWE decoder's (spec requires only that a given erasure pattern
// reproduce identical output across runs, not that subsystems share a
// generator). ConcealFrame seeds a per-frame generator from it and the
// erasure count, so sessions never share generator state.
var rngSeed uint32 = 0x2f6e2b1

// dcBiasResetThreshold gates reset_lsbdec/reset_hsbdec (spec §4.7.2 step
// 6): a concealed frame whose mean sample value exceeds this in magnitude,
// once CfeCount>=3, is treated as a pathological DC bias /
// constant-sign run that the periodic/noise extrapolation has run away
// with.
const dcBiasResetThreshold = 4096

// ConcealFrame implements the erasure path (spec §4.7.2): for a lost
// frame, extend xq with periodic and/or noise-filled excitation (mixed by
// the figure of merit), apply the gain-attenuation window once the loss
// has run past GattStart frames, feed the concealed output back through
// the live ADPCM predictors (hsbupd/lsbupd, step 6) so they keep tracking
// the trajectory a correctly decoded stream would have produced, and
// advance the erasure bookkeeping. low and high are the live decoder's
// sub-band state (mutated in place); hpLow/hpHigh are the low-/high-band
// DC-removal companion filters (spec's rh_m1/ph_m1 family) snapshotted on
// first erasure for later rephasing restore.
func (s *State) ConcealFrame(low, high *adpcm.SubBandState, hpLow, hpHigh *adpcm.HighpassState) (lowOut, highOut []int16) {
	if !s.PrevPloss {
		s.onFirstErasure(low, high, hpLow, hpHigh)
	}
	s.CfeCount++
	if s.Ngfae > 0 {
		s.Ngfae = 0
	}
	erasedIdx := s.CfeCount

	base := XQOff + LXQ
	pp := int(s.Ppf >> 6)
	if pp < MinPP {
		pp = MinPP
	}
	ptfe := s.PpInc

	periodic := PeriodicExtrapolate(s.Xq, base, pp, ptfe, FrameSize)

	var mem [LPCOrder]int16
	var mixed []int16
	seed := rngSeed + uint32(erasedIdx)
	if s.Merit > MHI*256 {
		mixed = periodic
	} else if s.Merit < MLO*256 {
		mixed = NoiseFill(s.Al, &mem, s.Avm, FrameSize, &seed)
	} else {
		noise := NoiseFill(s.Al, &mem, s.Avm, FrameSize, &seed)
		mixed = MixPeriodicAndNoise(periodic, noise, s.Merit)
	}

	attenuated := GainAttenuationWindow(mixed, erasedIdx)

	s.shiftXq(attenuated)

	half := len(attenuated) / 2
	lowOut = make([]int16, half)
	highOut = make([]int16, len(attenuated)-half)
	for i := 0; i < half; i++ {
		lowOut[i] = attenuated[2*i]
		highOut[i] = attenuated[2*i+1]
	}

	// hsbupd/lsbupd (spec §4.7.2 step 6): keep the live ADPCM predictor
	// and scale factors tracking the concealed signal just synthesised,
	// the way they would have tracked a correctly decoded stream.
	reconvergeSubBands(low, high, attenuated)
	s.NbplChng = low.Nb - s.NbplMean2
	s.NbphChng = high.Nb - s.NbphMean

	s.updateDCBias(lowOut, highOut)
	s.applyAdaptiveReset(low, high)

	s.PrevPloss = true
	// HPFlag signals the decoder to apply the HP-filtered P[0] override
	// (spec §4.7.1 step 8) to the first samples of the next good frame;
	// Resync clears it again once that frame has been processed.
	s.HPFlag = true
	return lowOut, highOut
}

// reconvergeSubBands implements hsbupd/lsbupd (spec §4.7.1 step 3 /
// §4.7.2 step 6): feeds already-reconstructed sub-band sample pairs back
// through the live ADPCM predictor/quantizer exactly as the encoder
// would, so predictor and scale-factor state keep tracking the
// trajectory a correctly decoded stream would have produced. interleaved
// is low/high-interleaved, matching ConcealFrame's own output ordering.
func reconvergeSubBands(low, high *adpcm.SubBandState, interleaved []int16) {
	n := len(interleaved) / 2
	for i := 0; i < n; i++ {
		adpcm.EncodeLowBandSample(low, interleaved[2*i], adpcm.EnhNone)
		adpcm.EncodeHighBandSample(high, interleaved[2*i+1])
	}
}

// updateDCBias tracks the concealed frame's mean low-/high-band sample
// value (spec's pl_postn/ph_postn), the input applyAdaptiveReset gates
// reset_lsbdec/reset_hsbdec on.
func (s *State) updateDCBias(low, high []int16) {
	var sl, sh int32
	for _, v := range low {
		sl += int32(v)
	}
	for _, v := range high {
		sh += int32(v)
	}
	if len(low) > 0 {
		s.PlPostn = int16(sl / int32(len(low)))
	}
	if len(high) > 0 {
		s.PhPostn = int16(sh / int32(len(high)))
	}
}

// applyAdaptiveReset implements reset_lsbdec/reset_hsbdec (spec §4.7.2
// step 6): once three or more consecutive frames are erased, a latest
// concealed frame whose mean carries a large DC bias is a sign the periodic/noise extrapolation
// has run away, so the affected sub-band predictor is reset rather than
// left to adapt toward nonsense.
func (s *State) applyAdaptiveReset(low, high *adpcm.SubBandState) {
	if s.CfeCount < 3 {
		return
	}
	if abs(int(s.PlPostn)) > dcBiasResetThreshold {
		low.Reset()
		s.LBReset = true
	}
	if abs(int(s.PhPostn)) > dcBiasResetThreshold {
		high.Reset()
		s.HBReset = true
	}
}

// onFirstErasure snapshots the live sub-band decoder state (spec §4.7.2
// step 1) so Resync can later replay from the pre-loss trajectory, and
// runs one LPC analysis + coarse pitch pass over the most recent history.
// It fills both snapshot sets (Saved*/CSaved*, spec's rh_m1/rhhp_m1 vs
// their c-prefixed copies) with the same copy of the live state: the plain
// set is restored when Resync finds a positive rephasing lag, the
// c-prefixed set when the lag is negative (spec §4.7.1 step 3). Only the
// output memory (Mem) of each high-pass filter is snapshotted.
func (s *State) onFirstErasure(low, high *adpcm.SubBandState, hpLow, hpHigh *adpcm.HighpassState) {
	s.SavedLow = *low
	s.SavedHigh = *high
	s.CSavedLow = *low
	s.CSavedHigh = *high
	if hpLow != nil {
		s.SavedLowHP = hpLow.Mem
		s.CSavedLowHP = hpLow.Mem
	}
	if hpHigh != nil {
		s.SavedHighHP = hpHigh.Mem
		s.CSavedHighHP = hpHigh.Mem
	}
	s.NbplMean2 = low.Nb
	s.NbphMean = high.Nb
	s.NbplChng = 0
	s.NbphChng = 0
	s.PlPostn = 0
	s.PhPostn = 0
	s.LBReset = false
	s.HBReset = false
	s.CfeCount = 0

	window := s.Xq[XQOff : XQOff+LXQ]
	s.AnalyzeLPC(window)

	cpp := CoarsePitch(s.Xwd[:], s.Pp>>6)
	pp, ptfe := Prfn(s.Xq, XQOff+LXQ, cpp)
	s.Pp = pp
	s.Ppf = pp
	s.PpInc = ptfe

	s.Merit = Merit(s.Xq, XQOff+LXQ, int(pp>>6))

	var avm int64
	for _, v := range window {
		if v < 0 {
			avm += int64(-v)
		} else {
			avm += int64(v)
		}
	}
	s.Avm = int32(avm / int64(len(window)))
}

// shiftXq appends newly synthesised samples onto the xq ring, discarding
// the oldest FrameSize samples (spec's circular buffer update).
func (s *State) shiftXq(samples []int16) {
	n := len(samples)
	copy(s.Xq, s.Xq[n:])
	copy(s.Xq[len(s.Xq)-n:], samples)
}

// Resync implements the good-frame-after-loss path (spec §4.7.1): it
// re-converges the ADPCM scale factors and DC-bias bookkeeping (steps
// 5-7), estimates a re-phasing lag between the concealed history and the
// first correctly received frame, restores and replays from the
// pre-erasure snapshot when a lag is found (step 3), and time-warps the
// frame so the decoder's output continues without an audible
// discontinuity. tout is the newly decoded (but not yet emitted) good
// frame, interleaved low/high the same way ConcealFrame produces its
// output; low/high/hpLow/hpHigh are the live decoder state ConcealFrame
// also operates on. wb is the live wideband QMF synthesis bank; when a
// rephasing lag is found, its delay line is refilled from the re-phased
// sub-bands too (step 4), so the filter memory doesn't drift back into
// sync by ordinary operation alone. wb may be nil, in which case this
// step is skipped.
func (s *State) Resync(tout []int16, low, high *adpcm.SubBandState, hpLow, hpHigh *adpcm.HighpassState, wb *qmf.Bank) []int16 {
	defer func() { s.PrevPloss = false }()

	if !s.PrevPloss {
		return tout
	}
	defer func() { s.HPFlag = false }()
	firstGoodFrame := s.Ngfae == 0
	s.Ngfae++
	if s.Ngfae > NgfaeSaturate {
		s.Ngfae = NgfaeSaturate
	}

	if firstGoodFrame {
		s.reconvergeScale(low, high)
	}

	if !TestRPC(s.Merit, tout) {
		s.Lag = 0
		return tout
	}

	base := XQOff + LXQ
	del := MaxOS
	if del > len(s.Xq)-base {
		del = len(s.Xq) - base
	}
	coarse := PPChange(s.Xq, base, s.Ppf, tout, del)
	if coarse == LagNone {
		s.Lag = 0
		return tout
	}
	lag := RefineLag(s.Xq, base, s.Ppf, tout, coarse)
	s.Lag = lag

	if firstGoodFrame && lag != 0 {
		s.replayFromSnapshot(low, high, hpLow, hpHigh, wb, lag)
	}

	warped := Resample(tout, lag)
	s.shiftXq(warped)
	return warped
}

// reconvergeScale implements steps 5-7 of the good-frame-after-loss path
// (spec §4.7.1): clear this erasure run's DC-bias/reset bookkeeping, pull
// nbh straight back to its pre-erasure mean, blend nbl toward its
// pre-erasure mean in proportion to how stationary the erasure run's bias
// looked (NbplChng, Q11), and pick the nbh low-pass-filter mode (spec's
// pNBPHlpfilter tagged variant, §9) for the frames right after recovery.
func (s *State) reconvergeScale(low, high *adpcm.SubBandState) {
	s.PlPostn = 0
	s.PhPostn = 0
	s.LBReset = false
	s.HBReset = false

	high.Nb = s.NbphMean
	high.RescaleHigh()

	const fullyNonStationary = 2048 // Q11: drift this large means the live nbl already re-converged on its own
	chng := int32(s.NbplChng)
	if chng < 0 {
		chng = -chng
	}
	switch {
	case chng >= fullyNonStationary:
		// fully non-stationary: keep the live (re-encoded) nbl as-is.
	case chng == 0:
		low.Nb = s.NbplMean2
	default:
		w := chng * 4096 / fullyNonStationary // Q12 weight toward the live value
		low.Nb = int16((int32(s.NbplMean2)*(4096-w) + int32(low.Nb)*w) >> 12)
	}
	low.RescaleLow()

	nbphChng := int32(s.NbphChng)
	if nbphChng < 0 {
		nbphChng = -nbphChng
	}
	switch {
	case nbphChng < 819:
		s.NBHModeSel = NBHFiltered
	case nbphChng < 1311:
		s.NBHModeSel = NBHPartial
	default:
		s.NBHModeSel = NBHPass
	}
}

// replayFromSnapshot implements steps 3-4 of the good-frame-after-loss
// path (spec §4.7.1): restore the pre-erasure sub-band decoder snapshot
// and hp-filter memories (the plain copy for a positive lag, the
// c-prefixed copy for a negative one), replay (MaxOS-|lag|)/2 concealed
// sub-band sample pairs through hsbupd/lsbupd so the restored state
// reconverges to "now" before the live decoder continues from it, and
// refill wb's QMF synthesis delay line from that same replayed history
// (step 4) so the filter memory matches the chosen phase rather than
// the stale state left over from concealment.
func (s *State) replayFromSnapshot(low, high *adpcm.SubBandState, hpLow, hpHigh *adpcm.HighpassState, wb *qmf.Bank, lag int) {
	if lag > 0 {
		*low, *high = s.SavedLow, s.SavedHigh
		if hpLow != nil {
			hpLow.Mem = s.SavedLowHP
		}
		if hpHigh != nil {
			hpHigh.Mem = s.SavedHighHP
		}
	} else {
		*low, *high = s.CSavedLow, s.CSavedHigh
		if hpLow != nil {
			hpLow.Mem = s.CSavedLowHP
		}
		if hpHigh != nil {
			hpHigh.Mem = s.CSavedHighHP
		}
	}

	replayPairs := (MaxOS - abs(lag)) / 2
	if replayPairs <= 0 {
		return
	}
	base := XQOff + LXQ
	pp := int(s.Ppf >> 6)
	if pp < MinPP {
		pp = MinPP
	}
	replay := PeriodicExtrapolate(s.Xq, base, pp, s.PpInc, 2*replayPairs)
	reconvergeSubBands(low, high, replay)

	if wb != nil {
		lowHist := make([]int16, replayPairs)
		highHist := make([]int16, replayPairs)
		for i := 0; i < replayPairs; i++ {
			lowHist[i] = replay[2*i]
			highHist[i] = replay[2*i+1]
		}
		wb.ReloadSynthesisMemory(lowHist, highHist)
	}
}
