package vm

import (
	"github.com/rs/zerolog"
)

// TraceObserver logs execution events at debug level.
type TraceObserver struct {
	logger zerolog.Logger
	config ObserverConfig
}

// NewTraceObserver returns an observer that logs every instruction, call
// and return to logger.
func NewTraceObserver(logger zerolog.Logger) *TraceObserver {
	return &TraceObserver{logger: logger, config: NewObserverConfig(StepAll)}
}

// WithStepMode returns a copy of the observer that steps in the given mode.
func (t *TraceObserver) WithStepMode(mode StepMode) *TraceObserver {
	cp := *t
	cp.config.StepMode = mode
	return &cp
}

func (t *TraceObserver) Config() ObserverConfig {
	return t.config
}

func (t *TraceObserver) OnStep(e StepEvent) bool {
	t.logger.Debug().
		Str("fn", e.Function).
		Int("ip", e.IP).
		Stringer("op", e.Opcode).
		Stringer("loc", e.Location).
		Int("stack", e.StackDepth).
		Int("frames", e.FrameDepth).
		Msg("step")
	return true
}

func (t *TraceObserver) OnCall(e CallEvent) bool {
	t.logger.Debug().
		Str("fn", e.Function).
		Int("argc", e.ArgCount).
		Stringer("loc", e.Location).
		Int("frames", e.FrameDepth).
		Msg("call")
	return true
}

func (t *TraceObserver) OnReturn(e ReturnEvent) bool {
	t.logger.Debug().
		Str("fn", e.Function).
		Int("frames", e.FrameDepth).
		Msg("return")
	return true
}

var _ Observer = (*TraceObserver)(nil)
