package reactive

import "time"

// SignalInfo describes a signal to an Observer.
type SignalInfo struct {
	ID   uint64
	Name string
}

// EffectInfo describes an effect to an Observer.
type EffectInfo struct {
	ID   EffectID
	Name string
	Kind EffectKind

	// Run is the 1-based number of the execution being reported.
	Run uint64

	// Depth is the nesting depth of the execution on the current call stack.
	// A run triggered directly by a write outside any effect has depth 1.
	Depth int
}

// Observer receives lifecycle notifications from a Runtime. Calls are made
// synchronously on the runtime's goroutine; implementations must not write
// signals.
type Observer interface {
	// SignalWritten is called after every write. changed is false when the
	// equality check suppressed the notification.
	SignalWritten(sig SignalInfo, changed bool)

	// EffectStarted is called before an effect body runs.
	EffectStarted(e EffectInfo)

	// EffectFinished is called after an effect body returns or panics.
	EffectFinished(e EffectInfo, elapsed time.Duration, panicked bool)

	// EffectDisposed is called once when an effect is disposed.
	EffectDisposed(e EffectInfo)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// the callbacks you need.
type NopObserver struct{}

func (NopObserver) SignalWritten(SignalInfo, bool)                 {}
func (NopObserver) EffectStarted(EffectInfo)                       {}
func (NopObserver) EffectFinished(EffectInfo, time.Duration, bool) {}
func (NopObserver) EffectDisposed(EffectInfo)                      {}

var _ Observer = NopObserver{}
