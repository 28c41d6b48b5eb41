package reactive

// Write is the argument of a signal setter: either a replacement value or an
// updater computing the next value from the previous one. Build one with
// Value or Updater.
type Write[T any] struct {
	value  T
	update func(prev T) T
}

// Value returns a Write that replaces the signal's value with v.
func Value[T any](v T) Write[T] {
	return Write[T]{value: v}
}

// Updater returns a Write that computes the next value from the previous one.
// A nil fn behaves like Value of the zero T.
func Updater[T any](fn func(prev T) T) Write[T] {
	return Write[T]{update: fn}
}

// IsUpdater reports whether w was built with Updater.
func (w Write[T]) IsUpdater() bool {
	return w.update != nil
}

// resolve returns the next value given the previous one.
func (w Write[T]) resolve(prev T) T {
	if w.update != nil {
		return w.update(prev)
	}
	return w.value
}

// Accessor reads a reactive value, subscribing the running effect.
type Accessor[T any] func() T

// Setter writes a signal and returns the resolved next value.
type Setter[T any] func(Write[T]) T
