package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Logger is an Observer that writes runtime activity to a slog.Logger.
// Signal writes and effect runs are logged at Debug, panicked runs at Warn.
type Logger struct {
	logger *slog.Logger

	// SlowThreshold promotes effect runs slower than it to Info.
	// Zero disables the promotion.
	SlowThreshold time.Duration
}

// NewLogger returns a Logger writing to l, or to slog.Default() if l is nil.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l}
}

func (l *Logger) SignalWritten(s reactive.SignalInfo, changed bool) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.logger.Debug("signal write",
		"signal_id", s.ID,
		"name", label(s.Name),
		"changed", changed)
}

func (l *Logger) EffectStarted(reactive.EffectInfo) {}

func (l *Logger) EffectFinished(e reactive.EffectInfo, elapsed time.Duration, panicked bool) {
	level := slog.LevelDebug
	msg := "effect run"
	switch {
	case panicked:
		level = slog.LevelWarn
		msg = "effect panicked"
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold:
		level = slog.LevelInfo
		msg = "slow effect run"
	}
	l.logger.Log(context.Background(), level, msg,
		"effect_id", e.ID,
		"name", label(e.Name),
		"kind", e.Kind.String(),
		"run", e.Run,
		"depth", e.Depth,
		"elapsed", elapsed)
}

func (l *Logger) EffectDisposed(e reactive.EffectInfo) {
	l.logger.Debug("effect disposed",
		"effect_id", e.ID,
		"name", label(e.Name),
		"runs", e.Run)
}
