package reactive

// source is anything an effect can subscribe to.
// It lets an effect drop its subscriptions without knowing the signal's type.
type source interface {
	unsubscribe(id EffectID)
}

// signalBase provides type-erased subscriber management.
// It is embedded in Signal[T] to keep the subscription logic out of the
// generic code.
type signalBase struct {
	rt   *Runtime
	id   uint64
	name string

	// subs are the subscribed effects in subscription order.
	subs []EffectID

	// member mirrors subs for constant-time deduplication.
	member map[EffectID]struct{}
}

// subscribe adds an effect to this signal's subscribers.
// Returns false if the effect was already subscribed.
func (s *signalBase) subscribe(id EffectID) bool {
	if _, ok := s.member[id]; ok {
		return false
	}
	if s.member == nil {
		s.member = make(map[EffectID]struct{})
	}
	s.member[id] = struct{}{}
	s.subs = append(s.subs, id)
	return true
}

// unsubscribe removes an effect from this signal's subscribers, keeping the
// order of the rest.
func (s *signalBase) unsubscribe(id EffectID) {
	if _, ok := s.member[id]; !ok {
		return
	}
	delete(s.member, id)
	for i, existing := range s.subs {
		if existing == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// track subscribes the runtime's current listener, if any.
func (s *signalBase) track() {
	e := s.rt.effect(s.rt.listener)
	if e == nil || e.disposed {
		return
	}
	if s.subscribe(e.id) {
		e.sources = append(e.sources, s)
	}
}

// notifySubscribers runs every subscriber of a snapshot taken before the
// first one starts. Subscriptions added or removed by the running effects
// only affect later writes. A panicking subscriber aborts the pass.
func (s *signalBase) notifySubscribers() {
	if len(s.subs) == 0 {
		return
	}
	subs := make([]EffectID, len(s.subs))
	copy(subs, s.subs)

	for _, id := range subs {
		if e := s.rt.effect(id); e != nil {
			s.rt.execute(e)
		}
	}
}

func (s *signalBase) info() SignalInfo {
	return SignalInfo{ID: s.id, Name: s.name}
}

// written records a write with the runtime's counters, logger and observer.
func (s *signalBase) written(changed bool) {
	rt := s.rt
	rt.stats.SignalWrites++
	if changed {
		rt.stats.Notifications++
	}
	if rt.debug.LogSignalWrites {
		rt.logger.Debug("signal write",
			"signal_id", s.id,
			"name", s.name,
			"changed", changed,
			"subscribers", len(s.subs))
	}
	if rt.observer != nil {
		rt.observer.SignalWritten(s.info(), changed)
	}
}

// Signal is a mutable reactive cell.
// Reading a Signal's value while an effect or memo runs automatically
// subscribes that effect; a changing write re-runs every subscriber before
// returning.
type Signal[T any] struct {
	base signalBase

	// value is the current signal value.
	value T

	opts signalOptions[T]
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](rt *Runtime, initial T, opts ...Option[T]) *Signal[T] {
	return newSignal(rt, initial, applyOptions(opts))
}

func newSignal[T any](rt *Runtime, initial T, opts signalOptions[T]) *Signal[T] {
	return &Signal[T]{
		base: signalBase{
			rt:   rt,
			id:   rt.newSignalID(),
			name: opts.name,
		},
		value: initial,
		opts:  opts,
	}
}

// CreateSignal creates a signal and returns its accessor and setter.
//
// Example:
//
//	count, setCount := reactive.CreateSignal(rt, 0)
//	setCount(reactive.Value(1))
//	setCount(reactive.Updater(func(c int) int { return c + 1 }))
//	count() // 2
func CreateSignal[T any](rt *Runtime, initial T, opts ...Option[T]) (Accessor[T], Setter[T]) {
	s := NewSignal(rt, initial, opts...)
	return s.Get, s.Write
}

// Get returns the current value and subscribes the current listener.
// Outside any effect it only reads.
func (s *Signal[T]) Get() T {
	s.base.track()
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Write resolves w against the current value and stores the result if the
// equality check reports a change, then synchronously re-runs subscribers.
// It returns the resolved value whether or not it was stored.
//
// If an updater panics the value is left untouched and the panic propagates.
func (s *Signal[T]) Write(w Write[T]) T {
	next := w.resolve(s.value)

	if s.equals(s.value, next) {
		s.base.written(false)
		return next
	}

	s.value = next
	s.base.written(true)
	s.base.notifySubscribers()
	return next
}

// Set replaces the value. It is shorthand for Write(Value(v)).
func (s *Signal[T]) Set(v T) T {
	return s.Write(Value(v))
}

// Update computes the next value from the current one.
// It is shorthand for Write(Updater(fn)).
func (s *Signal[T]) Update(fn func(prev T) T) T {
	return s.Write(Updater(fn))
}

// ID returns the identifier of this signal within its runtime.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Name returns the debug label of this signal.
func (s *Signal[T]) Name() string {
	return s.base.name
}

// Subscribers returns a copy of the subscribed effect IDs in subscription order.
func (s *Signal[T]) Subscribers() []EffectID {
	out := make([]EffectID, len(s.base.subs))
	copy(out, s.base.subs)
	return out
}

// equals checks if two values are equal using the configured predicate.
func (s *Signal[T]) equals(a, b T) bool {
	if s.opts.alwaysNotify {
		return false
	}
	if s.opts.equals != nil {
		return s.opts.equals(a, b)
	}
	return defaultEquals(a, b)
}
