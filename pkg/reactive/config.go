package reactive

import (
	"fmt"
	"log/slog"
	"strings"
)

// TrackingMode controls how an effect's dependency set evolves across runs.
type TrackingMode int

const (
	// TrackRebuild clears an effect's subscriptions before every run, so the
	// dependency set is exactly the set of signals read by the latest run.
	TrackRebuild TrackingMode = iota

	// TrackAccumulate never removes a subscription while the effect is alive.
	// A signal read on any earlier run keeps triggering the effect, even if
	// the latest run took a branch that no longer reads it.
	TrackAccumulate
)

// String returns the configuration name of the mode.
func (m TrackingMode) String() string {
	switch m {
	case TrackRebuild:
		return "rebuild"
	case TrackAccumulate:
		return "accumulate"
	default:
		return fmt.Sprintf("TrackingMode(%d)", int(m))
	}
}

// ParseTrackingMode parses "rebuild" or "accumulate" (case-insensitive).
// The empty string selects TrackRebuild.
func ParseTrackingMode(s string) (TrackingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rebuild":
		return TrackRebuild, nil
	case "accumulate":
		return TrackAccumulate, nil
	default:
		return 0, fmt.Errorf("reactive: unknown tracking mode %q", s)
	}
}

// DebugConfig controls debugging features for development.
type DebugConfig struct {
	// LogEffectRuns logs each effect run with timing information at Debug level.
	// Default: false.
	LogEffectRuns bool

	// LogSignalWrites logs each signal write at Debug level.
	// Default: false.
	LogSignalWrites bool
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger used for debug output.
// If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithTracking selects the dependency tracking mode. Default: TrackRebuild.
func WithTracking(mode TrackingMode) RuntimeOption {
	return func(rt *Runtime) {
		rt.mode = mode
	}
}

// WithMaxDepth bounds how deeply effect executions may nest on one call
// stack. Exceeding the bound panics with an error matching ErrCascadeDepth.
// Zero (the default) disables the guard.
func WithMaxDepth(n int) RuntimeOption {
	return func(rt *Runtime) {
		if n < 0 {
			n = 0
		}
		rt.maxDepth = n
	}
}

// WithObserver installs an Observer notified of signal writes and effect runs.
func WithObserver(o Observer) RuntimeOption {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// WithDebug sets the debug configuration.
func WithDebug(cfg DebugConfig) RuntimeOption {
	return func(rt *Runtime) {
		rt.debug = cfg
	}
}
