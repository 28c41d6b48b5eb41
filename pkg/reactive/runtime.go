package reactive

import (
	"log/slog"
)

// Runtime holds the state shared by a group of reactive primitives: the
// tracking context, the effect arena and the current owner. Primitives
// created against different runtimes never observe each other.
//
// A Runtime must not be used from more than one goroutine at a time.
type Runtime struct {
	// listener is the effect currently tracking dependencies.
	// Zero means no tracking (reads don't create subscriptions).
	listener EffectID

	// owner will own newly created effects.
	owner *Owner

	// effects is the arena indexed by EffectID-1. Entries are never removed;
	// disposed effects keep their slot so IDs stay unique.
	effects []*effectNode

	// nextSignalID numbers signals for observers and debug output.
	nextSignalID uint64

	mode     TrackingMode
	maxDepth int
	depth    int

	logger   *slog.Logger
	observer Observer
	debug    DebugConfig

	stats Stats
}

// Stats is a point-in-time summary of runtime activity.
type Stats struct {
	SignalsCreated   uint64 `json:"signalsCreated"`
	SignalWrites     uint64 `json:"signalWrites"`
	Notifications    uint64 `json:"notifications"`
	EffectsCreated   uint64 `json:"effectsCreated"`
	EffectsDisposed  uint64 `json:"effectsDisposed"`
	EffectRuns       uint64 `json:"effectRuns"`
	MaxDepthObserved int    `json:"maxDepthObserved"`
}

// ActiveEffects returns the number of effects created and not yet disposed.
func (s Stats) ActiveEffects() uint64 {
	return s.EffectsCreated - s.EffectsDisposed
}

// NewRuntime creates a runtime with the given options.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		mode:   TrackRebuild,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Stats returns a copy of the runtime counters.
func (rt *Runtime) Stats() Stats {
	return rt.stats
}

// TrackingMode returns the dependency tracking mode of the runtime.
func (rt *Runtime) TrackingMode() TrackingMode {
	return rt.mode
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Depth returns the current effect nesting depth. It is zero outside any
// effect execution.
func (rt *Runtime) Depth() int {
	return rt.depth
}

// effect returns the arena entry for id, or nil.
func (rt *Runtime) effect(id EffectID) *effectNode {
	if id == 0 || uint64(id) > uint64(len(rt.effects)) {
		return nil
	}
	return rt.effects[id-1]
}

// newSignalID returns the next signal identifier.
func (rt *Runtime) newSignalID() uint64 {
	rt.nextSignalID++
	rt.stats.SignalsCreated++
	return rt.nextSignalID
}
