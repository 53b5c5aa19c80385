package g722swb

import (
	"go.uber.org/zap"

	"github.com/gowideband/g722swb/internal/plclog"
)

type options struct {
	logger plclog.Logger
}

func defaultOptions() options {
	return options{logger: plclog.Nop()}
}

// Option configures an Encoder or Decoder at construction time.
type Option func(*options)

// WithLogger attaches a zap.Logger for PLC and mode-switch diagnostics
// (spec SPEC_FULL.md AMBIENT STACK). Omitting it leaves logging a no-op,
// so the hot decode path never forces log configuration on a caller that
// hasn't opted in.
func WithLogger(z *zap.Logger) Option {
	return func(o *options) {
		o.logger = plclog.New(z)
	}
}
