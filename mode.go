package g722swb

// Mode selects one of the six operating points this codec family
// supports (spec §6.1), ranging from the plain 48 kbit/s wideband core up
// through the 96 kbit/s super-wideband mode with both enhancement layers.
type Mode int

const (
	// R00wm is 48 kbit/s wideband: the G.722 core truncated to its first
	// six bit planes in bitpack.PlaneOrder (b2..b7).
	R00wm Mode = iota
	// R0wm is 56 kbit/s wideband: R00wm plus the b1 plane.
	R0wm
	// R1wm is 64 kbit/s wideband: the full untruncated G.722 core.
	R1wm
	// R1sm is 64 kbit/s super-wideband: G.722 at 56 kbit/s plus the SWB-0
	// bandwidth-extension layer.
	R1sm
	// R2sm is 80 kbit/s super-wideband: the full G.722 core plus SWB-1
	// (BWE + AVQ stage 1).
	R2sm
	// R3sm is 96 kbit/s super-wideband: R2sm plus the WBE enhancement
	// layer and AVQ stage 2.
	R3sm
)

// String renders the mode the way the reference test vectors name it.
func (m Mode) String() string {
	switch m {
	case R00wm:
		return "R00wm"
	case R0wm:
		return "R0wm"
	case R1wm:
		return "R1wm"
	case R1sm:
		return "R1sm"
	case R2sm:
		return "R2sm"
	case R3sm:
		return "R3sm"
	default:
		return "invalid"
	}
}

// valid reports whether m is one of the six defined operating modes.
func (m Mode) valid() bool {
	return m >= R00wm && m <= R3sm
}

// isSWB reports whether m carries the super-wideband bandwidth-extension
// layer, as opposed to being a plain wideband-core mode.
func (m Mode) isSWB() bool {
	return m == R1sm || m == R2sm || m == R3sm
}

// frameBytes is the on-the-wire byte count of one 5 ms frame at mode m
// (spec §6.2).
func (m Mode) frameBytes() int {
	switch m {
	case R00wm:
		return 30
	case R0wm:
		return 35
	case R1wm, R1sm:
		return 40
	case R2sm:
		return 50
	case R3sm:
		return 60
	default:
		return 0
	}
}

// g722CoreBytes is the byte count of the G.722 wideband core segment
// within mode m's frame (spec §6.2's "G.722 48k"/"56k"/"64k" prefix):
// R1sm carries the core at 56 kbit/s even though its total rate is
// 64 kbit/s once the SWB-0 layer is added.
func (m Mode) g722CoreBytes() int {
	switch m {
	case R00wm:
		return 30
	case R0wm, R1sm:
		return 35
	case R1wm, R2sm, R3sm:
		return 40
	default:
		return 0
	}
}

// decoderOutputRate is the PCM sample rate a decoder session created in
// mode m emits: 16 kHz for plain wideband modes, 32 kHz for SWB modes
// (spec §6.3). A session that has run an SWB mode keeps emitting 32 kHz
// after SetMode switches it to a wideband mode.
func (m Mode) decoderOutputRate() int {
	if m.isSWB() {
		return 32000
	}
	return 16000
}

// frameLen is L_frame, the number of PCM samples per 5 ms frame at the
// given sample rate (spec §6.1).
func frameLen(sampf int) int {
	return sampf * 5 / 1000
}
