package reactive

// Option configures a Signal or Memo.
type Option[T any] func(*signalOptions[T])

// signalOptions holds configuration for signal behavior.
type signalOptions[T any] struct {
	// name is a debug label. It has no behavioral effect.
	name string

	// equals decides whether a write is a no-op. nil selects defaultEquals.
	equals func(prev, next T) bool

	// alwaysNotify disables the equality check entirely.
	alwaysNotify bool
}

// WithName sets a debug label reported to observers and in debug logs.
//
// Example:
//
//	count := reactive.NewSignal(rt, 0, reactive.WithName[int]("count"))
func WithName[T any](name string) Option[T] {
	return func(o *signalOptions[T]) {
		o.name = name
	}
}

// WithEquals sets a custom change predicate. It returns true when prev and
// next should be treated as unchanged, in which case a write neither stores
// next nor notifies subscribers.
//
// Example:
//
//	pos := reactive.NewSignal(rt, Point{}, reactive.WithEquals(func(a, b Point) bool {
//	    return a.X == b.X
//	}))
func WithEquals[T any](fn func(prev, next T) bool) Option[T] {
	return func(o *signalOptions[T]) {
		o.equals = fn
		o.alwaysNotify = false
	}
}

// WithAlwaysNotify disables the equality check: every write stores the new
// value and notifies subscribers, even if it equals the old one.
func WithAlwaysNotify[T any]() Option[T] {
	return func(o *signalOptions[T]) {
		o.equals = nil
		o.alwaysNotify = true
	}
}

// applyOptions applies the given options and returns the resulting config.
func applyOptions[T any](opts []Option[T]) signalOptions[T] {
	var options signalOptions[T]
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}
