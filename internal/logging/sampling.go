package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below Debug for wire-level detail such as raw LLM prompts.
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name, accepting "trace".
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// Per message per second: the first 100 entries pass, then every 10th.
const (
	sampleTick       = time.Second
	sampleFirst      = 100
	sampleThereafter = 10
)

// sampled thins out entries below error level. A busy chat endpoint can log
// the same line thousands of times; errors always get through.
func sampled(core zapcore.Core) zapcore.Core {
	return zapcore.NewTee(
		bandCore{Core: core, lo: zapcore.ErrorLevel, hi: zapcore.FatalLevel},
		zapcore.NewSamplerWithOptions(
			bandCore{Core: core, lo: TraceLevel, hi: zapcore.WarnLevel},
			sampleTick, sampleFirst, sampleThereafter,
		),
	)
}

// bandCore passes only entries with lo <= level <= hi.
type bandCore struct {
	zapcore.Core
	lo, hi zapcore.Level
}

func (c bandCore) Enabled(l zapcore.Level) bool {
	return l >= c.lo && l <= c.hi && c.Core.Enabled(l)
}

func (c bandCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c bandCore) With(fields []zapcore.Field) zapcore.Core {
	return bandCore{Core: c.Core.With(fields), lo: c.lo, hi: c.hi}
}
