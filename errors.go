package g722swb

import "github.com/pkg/errors"

// Public error values (spec §7, "a conforming implementation surfaces a
// typed error" in place of the reference's error_exit abort).
var (
	// ErrInvalidMode indicates a Mode outside {R00wm, R0wm, R1wm, R1sm,
	// R2sm, R3sm}.
	ErrInvalidMode = errors.New("g722swb: invalid mode")

	// ErrInvalidSampleRate indicates an encoder sample rate outside
	// {16000, 32000}.
	ErrInvalidSampleRate = errors.New("g722swb: invalid sample rate (must be 16000 or 32000)")

	// ErrInvalidFrameLength indicates an encoder inwave slice whose length
	// isn't exactly L_frame = sampf*5ms.
	ErrInvalidFrameLength = errors.New("g722swb: input frame length does not match sample rate")

	// ErrMalformedBitstream indicates a decoder bitstream slice whose
	// length doesn't match the session mode's frame byte count. Per spec
	// §7 this is equivalent at the application layer to treating the
	// frame as erased, but decode still reports it distinctly so callers
	// can tell "erasure" apart from "corrupt input".
	ErrMalformedBitstream = errors.New("g722swb: bitstream length does not match mode's frame size")
)
