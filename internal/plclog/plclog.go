// Package plclog provides structured diagnostic logging for the wideband
// PLC engine: erasure onset/recovery, mode-switch attenuation events, and
// malformed-frame rejections. It wraps zap.Logger the way the rest of the
// module does (spec SPEC_FULL.md AMBIENT STACK), defaulting to a no-op
// logger so the hot decode path never forces log configuration on a
// caller that hasn't opted in.
package plclog

import "go.uber.org/zap"

// Logger is the PLC package's diagnostic sink. The zero value is not
// usable; use New or Nop.
type Logger struct {
	z *zap.Logger
}

// Nop returns a Logger that discards everything, the default for a
// Session that hasn't configured logging.
func Nop() Logger {
	return Logger{z: zap.NewNop()}
}

// New wraps an existing zap.Logger, scoping it under the "plc" name.
func New(z *zap.Logger) Logger {
	if z == nil {
		return Nop()
	}
	return Logger{z: z.Named("plc")}
}

// ErasureStart logs the onset of a lost frame, the figure of merit that
// will gate periodic-vs-noise extrapolation, and the chosen pitch period.
func (l Logger) ErasureStart(frameIndex int, merit int32, pitchPeriodQ6 int16) {
	l.z.Debug("frame erasure detected",
		zap.Int("frame_index", frameIndex),
		zap.Int32("merit", merit),
		zap.Int16("pitch_period_q6", pitchPeriodQ6),
	)
}

// ErasureContinue logs a consecutive lost frame and whether the gain
// attenuation window has begun muting output.
func (l Logger) ErasureContinue(consecutiveCount int, attenuating bool) {
	l.z.Debug("frame erasure continues",
		zap.Int("consecutive_count", consecutiveCount),
		zap.Bool("attenuating", attenuating),
	)
}

// Recovered logs the transition back to good frames, including the
// re-phasing lag chosen (or that none was applied).
func (l Logger) Recovered(lag int, goodFramesSinceLoss int) {
	l.z.Info("recovered from frame erasure",
		zap.Int("rephase_lag", lag),
		zap.Int("good_frames_since_loss", goodFramesSinceLoss),
	)
}

// ModeSwitch logs a mid-stream operating-mode change and the attenuation
// gain applied across the crossfade.
func (l Logger) ModeSwitch(from, to string, sattenuQ15 int16) {
	l.z.Info("operating mode switch",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int16("sattenu_q15", sattenuQ15),
	)
}

// MalformedFrame logs a rejected input frame, e.g. one whose length
// doesn't match any known byte layout for the session's mode.
func (l Logger) MalformedFrame(reason string, gotBytes int) {
	l.z.Warn("malformed frame rejected",
		zap.String("reason", reason),
		zap.Int("bytes", gotBytes),
	)
}
