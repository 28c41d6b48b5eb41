package reactive

// Memo is a read-only signal whose value is kept current by an internally
// owned effect.
//
// Memos are eager: when an upstream signal changes, the memo recomputes
// during that write and, if its equality check reports a change, re-runs its
// own subscribers. Reading a memo never triggers a computation. Effects that
// read a memo subscribe to the memo's internal signal, not to its upstream
// signals, so chains of memos propagate one layer at a time.
type Memo[T any] struct {
	sig  *Signal[T]
	node *effectNode
}

// NewMemo creates a memo. fn receives the previous memo value (initial on
// the first run) and returns the next one; the result is written through the
// memo's equality check, configured with the same options as a Signal.
//
// Example:
//
//	doubled := reactive.NewMemo(rt, func(int) int { return count.Get() * 2 }, 0)
//	total := reactive.NewMemo(rt, func(prev int) int { return prev + count.Get() }, 0)
func NewMemo[T any](rt *Runtime, fn func(prev T) T, initial T, opts ...Option[T]) *Memo[T] {
	options := applyOptions(opts)
	m := &Memo[T]{
		sig: newSignal(rt, initial, options),
	}

	m.node = rt.newEffect(KindMemo, options.name)
	m.node.body = func() {
		m.sig.Update(fn)
	}

	rt.execute(m.node)
	return m
}

// CreateMemo creates a memo and returns only its accessor.
//
// Example:
//
//	count, setCount := reactive.CreateSignal(rt, 5)
//	doubled := reactive.CreateMemo(rt, func(int) int { return count() * 2 }, 0)
//	doubled()  // 10
//	setCount(reactive.Value(10))
//	doubled()  // 20
func CreateMemo[T any](rt *Runtime, fn func(prev T) T, initial T, opts ...Option[T]) Accessor[T] {
	return NewMemo(rt, fn, initial, opts...).Get
}

// Get returns the memo's value and subscribes the current listener.
func (m *Memo[T]) Get() T {
	return m.sig.Get()
}

// Peek returns the memo's value without subscribing.
func (m *Memo[T]) Peek() T {
	return m.sig.Peek()
}

// ID returns the identifier of the memo's internal signal.
func (m *Memo[T]) ID() uint64 {
	return m.sig.ID()
}

// Name returns the debug label of the memo.
func (m *Memo[T]) Name() string {
	return m.sig.Name()
}

// Runs returns how many times the memo has computed.
func (m *Memo[T]) Runs() uint64 {
	return m.node.runs
}

// Subscribers returns the effects subscribed to the memo's value.
func (m *Memo[T]) Subscribers() []EffectID {
	return m.sig.Subscribers()
}
