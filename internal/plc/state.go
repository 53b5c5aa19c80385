// Package plc implements the wideband packet-loss concealment engine of
// Appendix III (spec §4.7): LPC analysis, pitch extraction, periodic/noise
// extrapolation, gain attenuation, and the re-phasing/time-warping of the
// first good frame after an erasure. It owns a private snapshot of the
// G.722 low/high-band decoder state so re-phasing can replay alternate
// sample counts without disturbing the live decoder until a choice is
// committed (spec §3 "PLCState").
package plc

import "github.com/gowideband/g722swb/internal/adpcm"

const (
	// LPCOrder is the PLC's linear-prediction order (spec's M=8).
	LPCOrder = 8

	// FrameSize is one WB PLC frame at 16 kHz, 5 ms (spec's FRSZ).
	FrameSize = 80

	// MaxOS bounds the re-phasing lag search (spec's MAXOS).
	MaxOS = 80

	// MinPP/MaxPP bound the pitch period in samples at 16 kHz (spec's
	// MINPP/MAXPP).
	MinPP = 32
	MaxPP = 290

	// XQOff is the base offset into the xq ring buffer the filter memory
	// reaches backward from (spec §9's named-constant guidance for
	// pointer arithmetic with negative indices).
	XQOff = MaxPP + 24

	// LXQ is the length of the live (non-history-margin) portion of xq.
	LXQ = FrameSize

	// GattStart/GattEnd bound the gain-attenuation ramp (spec's
	// GATTST=2, GATTEND=6 frames).
	GattStart = 2
	GattEnd   = 6

	// MLO/MHI bound the figure-of-merit gate between periodic
	// extrapolation and noise fill (spec §4.7.2 steps 3-4).
	MLO = 64
	MHI = 200

	// NgfaeSaturate is the cap on "number of good frames after erasure"
	// bookkeeping (spec's ngfae invariant).
	NgfaeSaturate = 9
)

// NBHMode is the tagged-variant replacement for the reference's function-
// pointer switch on nbph filtering (spec §9 "pNBPHlpfilter"): 2 = fully
// LP-filtered, 1 = partially filtered, 0 = passthrough.
type NBHMode int

const (
	NBHFiltered NBHMode = 2
	NBHPartial  NBHMode = 1
	NBHPass     NBHMode = 0
)

// State is the wideband PLC engine's persistent state (spec §3
// "PLCState"), scoped to one decoder session.
type State struct {
	// LPC analysis.
	Al     [LPCOrder + 1]int16
	Alast  [LPCOrder + 1]int16
	Stsyml [LPCOrder]int16 // short-term synthesis filter memory
	Stwpml [LPCOrder]int16 // short-term weighted-speech filter memory

	// Decimated weighted-speech ring for coarse pitch search.
	Xwd    [200]int16
	XwdExp int

	// Decimation filter memory.
	Dfm [60]int16

	// Output history ring (spec's xq, length LXQ+24+MaxOS+XQOff).
	Xq []int16

	// Pitch history/tracking.
	Pph    [5]int16
	Pp     int16 // current pitch period, Q6
	Ppf    int16 // filtered pitch period, Q6
	PpInc  int16 // pitch tap ptfe from Prfn, Q14
	Merit  int32
	Avm    int32 // average magnitude of the xq analysis window

	// Erasure bookkeeping.
	CfeCount int // consecutive-frame-erasure counter
	Ngfae    int // good frames after erasure (saturates at NgfaeSaturate)

	Lag int // re-phasing lag chosen for the first good frame

	// Low/high band DC-bias and re-sync bookkeeping.
	NbplMean2 int16
	NbphMean  int16
	HPFlag    bool
	LBReset   bool
	HBReset   bool
	PlPostn   int16
	PhPostn   int16
	NbplChng  int16
	NbphChng  int16
	NBHModeSel NBHMode

	// Pre-erasure snapshots for re-phasing (spec's ds, rhhp_m1, rh_m1,
	// phhp_m1, ph_m1 and their c-prefixed copies).
	SavedLow      adpcm.SubBandState
	SavedHigh     adpcm.SubBandState
	SavedLowHP    int16
	SavedHighHP   int16
	CSavedLow     adpcm.SubBandState
	CSavedHigh    adpcm.SubBandState
	CSavedLowHP   int16
	CSavedHighHP  int16

	PrevPloss bool
}

// NewState constructs a zeroed PLC state with the xq ring buffer sized to
// the worst case the engine needs (spec §9 "scratch allocation... replace
// with session-owned scratch buffers sized by the worst case").
func NewState() *State {
	s := &State{}
	s.Xq = make([]int16, LXQ+24+MaxOS+XQOff)
	return s
}

// Reset clears PLC state without reallocating the xq ring.
func (s *State) Reset() {
	xq := s.Xq
	*s = State{Xq: xq}
	for i := range s.Xq {
		s.Xq[i] = 0
	}
}
