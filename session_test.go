package g722swb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineFrame(n int, freq, sampf float64, phase *float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(8000 * math.Sin(*phase))
		*phase += 2 * math.Pi * freq / sampf
	}
	return out
}

func modeSampleRate(m Mode) int {
	if m.isSWB() {
		return 32000
	}
	return 16000
}

func TestEncodeDecodeRoundTripAllModes(t *testing.T) {
	modes := []Mode{R00wm, R0wm, R1wm, R1sm, R2sm, R3sm}
	for _, mode := range modes {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			sampf := modeSampleRate(mode)
			enc, err := NewEncoder(sampf, mode)
			require.NoError(t, err)
			dec, err := NewDecoder(mode)
			require.NoError(t, err)

			phase := 0.0
			for frame := 0; frame < 20; frame++ {
				in := sineFrame(frameLen(sampf), 440, float64(sampf), &phase)
				bitstream, err := enc.Encode(in)
				require.NoError(t, err)
				assert.Equal(t, mode.frameBytes(), len(bitstream))

				out, err := dec.Decode(bitstream, false)
				require.NoError(t, err)
				assert.Equal(t, frameLen(mode.decoderOutputRate()), len(out))
			}
		})
	}
}

func TestNewEncoderRejectsInvalidMode(t *testing.T) {
	_, err := NewEncoder(16000, Mode(99))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestNewEncoderRejectsSampleRateMismatch(t *testing.T) {
	_, err := NewEncoder(16000, R1sm)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)

	_, err = NewEncoder(32000, R1wm)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)

	_, err = NewEncoder(8000, R1wm)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

func TestNewDecoderRejectsInvalidMode(t *testing.T) {
	_, err := NewDecoder(Mode(-1))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestEncodeRejectsWrongFrameLength(t *testing.T) {
	enc, err := NewEncoder(16000, R1wm)
	require.NoError(t, err)
	_, err = enc.Encode(make([]int16, 10))
	assert.ErrorIs(t, err, ErrInvalidFrameLength)
}

func TestDecodeRejectsWrongBitstreamLength(t *testing.T) {
	dec, err := NewDecoder(R1wm)
	require.NoError(t, err)
	_, err = dec.Decode(make([]byte, 3), false)
	assert.ErrorIs(t, err, ErrMalformedBitstream)
}

func TestDecodePlossIgnoresBitstreamLength(t *testing.T) {
	dec, err := NewDecoder(R1wm)
	require.NoError(t, err)
	out, err := dec.Decode(nil, true)
	require.NoError(t, err)
	assert.Equal(t, frameLen(16000), len(out))
}

func TestConcealmentThenResyncRoundTrip(t *testing.T) {
	mode := R1wm
	sampf := modeSampleRate(mode)
	enc, err := NewEncoder(sampf, mode)
	require.NoError(t, err)
	dec, err := NewDecoder(mode)
	require.NoError(t, err)

	phase := 0.0
	for frame := 0; frame < 5; frame++ {
		in := sineFrame(frameLen(sampf), 440, float64(sampf), &phase)
		bitstream, err := enc.Encode(in)
		require.NoError(t, err)
		_, err = dec.Decode(bitstream, false)
		require.NoError(t, err)
	}

	for loss := 0; loss < 3; loss++ {
		out, err := dec.Decode(nil, true)
		require.NoError(t, err)
		assert.Equal(t, frameLen(16000), len(out))
	}

	in := sineFrame(frameLen(sampf), 440, float64(sampf), &phase)
	bitstream, err := enc.Encode(in)
	require.NoError(t, err)
	out, err := dec.Decode(bitstream, false)
	require.NoError(t, err)
	assert.Equal(t, frameLen(16000), len(out))
}

func TestSetModeRampsAttenuationThenSettles(t *testing.T) {
	dec, err := NewDecoder(R1wm)
	require.NoError(t, err)
	require.NoError(t, dec.SetMode(R1sm))
	assert.Equal(t, R1sm, dec.mode)
	assert.Equal(t, attenSteps, dec.switchRemaining)

	encSWB, err := NewEncoder(32000, R1sm)
	require.NoError(t, err)
	phase := 0.0
	for i := 0; i < attenSteps+2; i++ {
		in := sineFrame(frameLen(32000), 440, 32000, &phase)
		bitstream, err := encSWB.Encode(in)
		require.NoError(t, err)
		_, err = dec.Decode(bitstream, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, dec.switchRemaining)
	assert.Equal(t, int32(1<<15), dec.sattenu)
}

func TestSetModeNoOpWhenUnchanged(t *testing.T) {
	dec, err := NewDecoder(R1wm)
	require.NoError(t, err)
	require.NoError(t, dec.SetMode(R1wm))
	assert.Equal(t, 0, dec.switchRemaining)
}

func TestSetModeRejectsInvalidMode(t *testing.T) {
	dec, err := NewDecoder(R1wm)
	require.NoError(t, err)
	err = dec.SetMode(Mode(42))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestResetClearsEncoderAndDecoderState(t *testing.T) {
	enc, err := NewEncoder(32000, R3sm)
	require.NoError(t, err)
	dec, err := NewDecoder(R3sm)
	require.NoError(t, err)

	phase := 0.0
	in := sineFrame(frameLen(32000), 440, 32000, &phase)
	bitstream, err := enc.Encode(in)
	require.NoError(t, err)
	_, err = dec.Decode(bitstream, false)
	require.NoError(t, err)

	enc.Reset()
	dec.Reset()

	bitstream2, err := enc.Encode(in)
	require.NoError(t, err)
	out, err := dec.Decode(bitstream2, false)
	require.NoError(t, err)
	assert.Equal(t, frameLen(32000), len(out))
}
