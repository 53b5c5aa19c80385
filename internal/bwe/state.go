package bwe

// State is the encoder/decoder mirror (spec §3 "BWEState"): previous mode,
// previous temporal/frequency envelope buffers, the MDCT overlap buffer,
// and the transient-position modifier flag.
type State struct {
	PrevMode CodMode

	PrevTenv [SWBTEnv]int
	PrevFenv [SWBNormalFenv]int

	Window      []float64 // MDCT synthesis/analysis window, cached
	Overlap     []float64 // previous block's trailing half for overlap-add
	TModifyFlag bool
}

// NewState constructs a zeroed BWE state with the MDCT window precomputed.
func NewState() *State {
	return &State{
		Window:  sineWindow(MDCTLen),
		Overlap: make([]float64, MDCTLen/2),
	}
}

// Reset clears all BWE state, used on stream (re)start.
func (s *State) Reset() {
	s.PrevMode = ModeNormal
	s.PrevTenv = [SWBTEnv]int{}
	s.PrevFenv = [SWBNormalFenv]int{}
	for i := range s.Overlap {
		s.Overlap[i] = 0
	}
	s.TModifyFlag = false
}

// Payload is the decoded/encoded SWB-0 bitstream content (spec §6.2): 2
// bits cod_mode, temporal-envelope indices, a 5-bit gain index, and
// frequency-envelope indices, all packed into NBitsModeR1SMBWE bits.
type Payload struct {
	CodMode   CodMode
	TenvIdx   [SWBTEnv]int
	GainIdx   int
	FenvIdx   [SWBNormalFenv]int
	WBEnhFlag bool
}
